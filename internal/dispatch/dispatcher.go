// Package dispatch delivers published events to subscriber URLs. Delivery is
// fire-and-forget: one attempt per subscriber, no acknowledgment, no retry.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gogotex/pubsub/backend/broker/internal/topic"
	"github.com/gogotex/pubsub/backend/broker/pkg/metrics"
	"github.com/rs/zerolog"
)

// Dispatcher delivers one event to one subscriber URL without blocking the caller.
type Dispatcher interface {
	Deliver(ctx context.Context, url string, ev topic.Event)
}

// Func adapts a plain function to the Dispatcher interface.
type Func func(ctx context.Context, url string, ev topic.Event)

func (f Func) Deliver(ctx context.Context, url string, ev topic.Event) { f(ctx, url, ev) }

// Options configures an HTTPDispatcher.
type Options struct {
	// Timeout bounds a single delivery. Zero means no timeout.
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// HTTPDispatcher POSTs the event as JSON to the subscriber URL from its own
// goroutine. Failures are logged and counted, never returned.
type HTTPDispatcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

func NewHTTPDispatcher(opts Options, logger zerolog.Logger) *HTTPDispatcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "pubsub-broker/1.0"
	}
	return &HTTPDispatcher{client: client, timeout: opts.Timeout, userAgent: ua, logger: logger}
}

// Deliver starts the delivery and returns immediately. The caller's
// cancellation is dropped so a finished request does not abort the delivery.
func (d *HTTPDispatcher) Deliver(ctx context.Context, url string, ev topic.Event) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.send(ctx, url, ev); err != nil {
			metrics.Dispatches.WithLabelValues(metrics.ResultFailure).Inc()
			d.logger.Warn().Err(err).
				Str("url", url).
				Str("topic_id", ev.Topic).
				Msg("event delivery failed")
			return
		}
		metrics.Dispatches.WithLabelValues(metrics.ResultSuccess).Inc()
		d.logger.Debug().
			Str("url", url).
			Str("topic_id", ev.Topic).
			Msg("event delivered")
	}()
}

// Wait blocks until every delivery started so far has finished.
func (d *HTTPDispatcher) Wait() {
	d.wg.Wait()
}

func (d *HTTPDispatcher) send(ctx context.Context, url string, ev topic.Event) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("subscriber responded %d", resp.StatusCode)
	}
	return nil
}
