// Package deliver fans a created alert out to the enabled delivery channels:
// console, webhook, Slack, and email. Delivery is best-effort and
// fire-and-forget; a failure on one channel never prevents the others and
// never propagates to the caller that created the alert.
package deliver

import (
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/config"
	"github.com/openmesh/xmon/internal/logger"
)

// defaultJoinTimeout bounds how long Deliver waits for the channel fan-out.
// Slow channels past the deadline keep running detached; they are never
// retried.
const defaultJoinTimeout = 15 * time.Second

// Dispatcher delivers alerts over the channels enabled in the config passed
// to Deliver. Safe for concurrent use.
type Dispatcher struct {
	log         logger.Logger
	client      *http.Client
	out         io.Writer
	joinTimeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutput redirects console notices (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) { d.out = w }
}

// WithHTTPClient overrides the HTTP client used for webhook and Slack posts.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithJoinTimeout bounds how long Deliver waits for all channels.
func WithJoinTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.joinTimeout = t }
}

// New creates a Dispatcher.
func New(log logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Noop()
	}
	d := &Dispatcher{
		log:         log,
		client:      &http.Client{Timeout: 10 * time.Second},
		out:         os.Stdout,
		joinTimeout: defaultJoinTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver attempts every enabled channel independently, one goroutine per
// channel, and waits for them up to the join timeout. Failures are logged
// per channel and never returned.
func (d *Dispatcher) Deliver(a alert.Alert, cfg *config.Config) {
	type channel struct {
		name    string
		enabled bool
		send    func() error
	}

	channels := []channel{
		{"console", cfg.ConsoleAlerts, func() error {
			return d.sendConsole(a)
		}},
		{"webhook", cfg.WebhookAlerts && cfg.WebhookURL != "", func() error {
			return d.sendWebhook(a, cfg.WebhookURL)
		}},
		{"slack", cfg.SlackAlerts && cfg.SlackWebhookURL != "", func() error {
			return d.sendSlack(a, cfg.SlackWebhookURL)
		}},
		{"email", cfg.EmailAlerts && len(cfg.EmailRecipients) > 0, func() error {
			return d.sendEmail(a, cfg.EmailRecipients)
		}},
	}

	var wg sync.WaitGroup
	for _, ch := range channels {
		if !ch.enabled {
			continue
		}
		wg.Add(1)
		go func(ch channel) {
			defer wg.Done()
			if err := ch.send(); err != nil {
				d.log.Error("failed to deliver alert %s via %s: %v", a.ID, ch.name, err)
			}
		}(ch)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d.joinTimeout):
		d.log.Warn("alert %s delivery still running after %s", a.ID, d.joinTimeout)
	}
}
