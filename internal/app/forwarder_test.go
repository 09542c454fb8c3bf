package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu    sync.Mutex
	calls []ContentRequest
	err   error
	block chan struct{}
}

func (f *fakeService) Do(ctx context.Context, req ContentRequest) error {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestForwarder_ReturnsBeforeServiceAnswers(t *testing.T) {
	svc := &fakeService{block: make(chan struct{})}
	f := NewForwarder(svc, time.Minute)
	done := make(chan error, 1)
	f.OnOutcome = func(_ ContentRequest, err error) { done <- err }

	start := time.Now()
	f.Forward(ContentRequest{Op: OpCreate, Path: "/api/posts/1/messages/", Credential: "tok"})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(svc.block)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("forward never finished")
	}
	f.Close(context.Background())
}

func TestForwarder_FailureIsOnlyReported(t *testing.T) {
	svc := &fakeService{err: errors.New("boom")}
	f := NewForwarder(svc, time.Second)
	done := make(chan error, 1)
	f.OnOutcome = func(_ ContentRequest, err error) { done <- err }

	f.Forward(ContentRequest{Op: OpDelete, Path: "/x/"})
	select {
	case err := <-done:
		assert.EqualError(t, err, "boom")
	case <-time.After(2 * time.Second):
		t.Fatal("forward never finished")
	}
	f.Close(context.Background())

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Len(t, svc.calls, 1, "no retries")
}

func TestForwarder_TimeoutCancelsCall(t *testing.T) {
	svc := &fakeService{block: make(chan struct{})}
	f := NewForwarder(svc, 20*time.Millisecond)
	done := make(chan error, 1)
	f.OnOutcome = func(_ ContentRequest, err error) { done <- err }

	f.Forward(ContentRequest{Op: OpUpdate, Path: "/slow/"})
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout not applied")
	}
	f.Close(context.Background())
}

func TestForwarder_DisabledAndClosed(t *testing.T) {
	var nilFwd *Forwarder
	assert.False(t, nilFwd.Enabled())
	nilFwd.Forward(ContentRequest{Path: "/x/"})

	svc := &fakeService{}
	f := NewForwarder(svc, time.Second)
	f.Close(context.Background())
	f.Forward(ContentRequest{Path: "/x/"})
	assert.Empty(t, svc.calls)
}

func TestStripCredential(t *testing.T) {
	clean, token, err := StripCredential(json.RawMessage(`{"roomID":"A","message":{"text":"hi"},"token":"secret"}`))
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
	assert.JSONEq(t, `{"roomID":"A","message":{"text":"hi"}}`, string(clean))

	clean, token, err = StripCredential(json.RawMessage(`{"roomID":"A"}`))
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.JSONEq(t, `{"roomID":"A"}`, string(clean))

	_, _, err = StripCredential(json.RawMessage(`"not an object"`))
	assert.Error(t, err)
}
