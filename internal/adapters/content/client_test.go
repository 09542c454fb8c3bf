package content

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkeye/roomrelay/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method string
	path   string
	auth   string
	ctype  string
	body   string
}

func newServer(t *testing.T, status int) (*httptest.Server, chan seen) {
	t.Helper()
	ch := make(chan seen, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		ch <- seen{r.Method, r.URL.Path, r.Header.Get("Authorization"), r.Header.Get("Content-Type"), string(b)}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	}))
	t.Cleanup(ts.Close)
	return ts, ch
}

func TestClient_MethodsAndAuth(t *testing.T) {
	cases := []struct {
		op     app.Op
		method string
	}{
		{app.OpCreate, http.MethodPost},
		{app.OpUpdate, http.MethodPatch},
		{app.OpDelete, http.MethodDelete},
	}
	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			ts, ch := newServer(t, http.StatusOK)
			c := NewClient(ts.URL+"/", "Token", time.Second)

			var body any
			if tc.op != app.OpDelete {
				body = map[string]string{"text": "hi"}
			}
			err := c.Do(context.Background(), app.ContentRequest{
				Op: tc.op, Path: "/api/posts/7/messages/", Body: body, Credential: "abc",
			})
			require.NoError(t, err)

			got := <-ch
			assert.Equal(t, tc.method, got.method)
			assert.Equal(t, "/api/posts/7/messages/", got.path)
			assert.Equal(t, "Token abc", got.auth)
			if body != nil {
				assert.Equal(t, "application/json", got.ctype)
				assert.JSONEq(t, `{"text":"hi"}`, got.body)
			} else {
				assert.Empty(t, got.body)
			}
		})
	}
}

func TestClient_StatusError(t *testing.T) {
	ts, ch := newServer(t, http.StatusForbidden)
	c := NewClient(ts.URL, "Bearer", time.Second)

	err := c.Do(context.Background(), app.ContentRequest{Op: app.OpUpdate, Path: "/x/", Body: json.RawMessage(`{}`), Credential: "t"})
	<-ch
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, http.MethodPatch, se.Method)
	assert.Contains(t, se.Body, "nope")
}

func TestClient_UnknownOp(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "Token", time.Second)
	assert.Error(t, c.Do(context.Background(), app.ContentRequest{Op: "upsert", Path: "/x/"}))
}

func TestClient_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(block) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewClient(ts.URL, "Token", time.Minute).Do(ctx, app.ContentRequest{Op: app.OpCreate, Path: "/x/"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
