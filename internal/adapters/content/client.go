package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/roomrelay/internal/app"
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content service %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the external content service over REST.
type Client struct {
	BaseURL    string
	AuthScheme string
	HTTP       *http.Client
}

func NewClient(baseURL, authScheme string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AuthScheme: authScheme,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

func method(op app.Op) (string, error) {
	switch op {
	case app.OpCreate:
		return http.MethodPost, nil
	case app.OpUpdate:
		return http.MethodPatch, nil
	case app.OpDelete:
		return http.MethodDelete, nil
	}
	return "", fmt.Errorf("unknown op %q", op)
}

// Do performs req and discards the response body.
func (c *Client) Do(ctx context.Context, req app.ContentRequest) error {
	m, err := method(req.Op)
	if err != nil {
		return err
	}
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	hreq, err := http.NewRequestWithContext(ctx, m, c.BaseURL+req.Path, body)
	if err != nil {
		return err
	}
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Accept", "application/json")
	if req.Credential != "" {
		auth := req.Credential
		if c.AuthScheme != "" {
			auth = c.AuthScheme + " " + auth
		}
		hreq.Header.Set("Authorization", auth)
	}

	resp, err := c.HTTP.Do(hreq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: m, Path: req.Path, Code: resp.StatusCode, Body: string(snippet)}
	}
	return nil
}
