package app

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dkeye/roomrelay/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ContentRequest is one durable write against the external content service.
type ContentRequest struct {
	Op         Op
	Path       string
	Body       any
	Credential string
}

// ContentService is the black-box REST dependency.
type ContentService interface {
	Do(ctx context.Context, req ContentRequest) error
}

// Forwarder runs content service calls detached from the relay path.
// Forward returns immediately; the outcome is only logged.
type Forwarder struct {
	svc     ContentService
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
	closed atomic.Bool

	// OnOutcome, when set, observes every finished call.
	OnOutcome func(ContentRequest, error)
}

// NewForwarder builds a forwarder. A nil svc disables forwarding.
func NewForwarder(svc ContentService, timeout time.Duration) *Forwarder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Forwarder{svc: svc, timeout: timeout, ctx: ctx, cancel: cancel}
}

func (f *Forwarder) Enabled() bool { return f != nil && f.svc != nil }

// Forward dispatches req and returns without waiting for it.
func (f *Forwarder) Forward(req ContentRequest) {
	if !f.Enabled() || f.closed.Load() {
		log.Debug().Str("module", "app.forwarder").Str("path", req.Path).Msg("forwarding disabled, dropped")
		return
	}
	f.wg.Go(func() { f.run(req) })
}

func (f *Forwarder) run(req ContentRequest) {
	ctx := f.ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	start := time.Now()
	err := f.svc.Do(ctx, req)
	logger := log.With().Str("module", "app.forwarder").Str("op", string(req.Op)).
		Str("path", req.Path).Dur("took", time.Since(start)).Logger()
	if err != nil {
		metrics.ForwardsTotal.WithLabelValues(string(req.Op), "error").Inc()
		logger.Error().Err(err).Msg("forward failed")
	} else {
		metrics.ForwardsTotal.WithLabelValues(string(req.Op), "ok").Inc()
		logger.Info().Msg("forward ok")
	}
	if f.OnOutcome != nil {
		f.OnOutcome(req, err)
	}
}

// Close stops accepting work and waits for in-flight calls. Calls still
// running after ctx expires are cancelled.
func (f *Forwarder) Close(ctx context.Context) {
	if f == nil || !f.closed.CompareAndSwap(false, true) {
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if r := f.wg.WaitAndRecover(); r != nil {
			log.Error().Str("module", "app.forwarder").Str("panic", r.String()).Msg("forward task panicked")
		}
	}()
	select {
	case <-done:
	case <-ctx.Done():
		f.cancel()
		<-done
	}
	f.cancel()
}

// StripCredential removes the client credential from a raw JSON object so the
// rest of it can be broadcast. It returns the cleaned object and the credential.
func StripCredential(raw json.RawMessage) (json.RawMessage, string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, "", err
	}
	var token string
	for _, key := range []string{"token", "credential"} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil && s != "" && token == "" {
			token = s
		}
		delete(fields, key)
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return nil, "", err
	}
	return clean, token, nil
}
