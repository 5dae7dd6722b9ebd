// Package probe performs bounded-timeout reachability checks against a
// single node: ICMP ping, service-port TCP dial, and an optional HTTP
// liveness probe. Probers are stateless and safe to use concurrently for
// different nodes.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"time"

	"github.com/openmesh/xmon/internal/inventory"
)

// Config holds the per-probe timeouts and the service port to check.
type Config struct {
	PingTimeout    time.Duration
	ServiceTimeout time.Duration
	HTTPTimeout    time.Duration
}

// probeFunc runs one sub-probe against an address and reports success plus
// error text. Swappable in tests.
type probeFunc func(ctx context.Context, address string, cfg Config) (bool, string)

// Prober executes reachability checks. The zero value is not usable; create
// one with New.
type Prober struct {
	pingFn    probeFunc
	serviceFn func(ctx context.Context, address string, port int, cfg Config) (bool, string)
	httpFn    probeFunc
}

// New creates a Prober using the real ping/TCP/HTTP implementations.
func New() *Prober {
	return &Prober{
		pingFn:    pingProbe,
		serviceFn: serviceProbe,
		httpFn:    httpProbe,
	}
}

// Check performs all applicable sub-probes against the node, each with its
// own timeout, and derives the overall status. Sub-probe failures are
// recorded in the result; Check itself never fails.
func (p *Prober) Check(ctx context.Context, node inventory.NodeRef, cfg Config) HealthCheck {
	hc := HealthCheck{
		NodeID:    node.ID,
		Timestamp: time.Now().UTC(),
	}

	if node.Address == "" {
		hc.Status = StatusUnknown
		hc.Ping = Result{Error: "no address known for node"}
		return hc
	}

	hc.Ping = p.run(ctx, cfg.PingTimeout, func(ctx context.Context) (bool, string) {
		return p.pingFn(ctx, node.Address, cfg)
	})

	hc.Service = p.run(ctx, cfg.ServiceTimeout, func(ctx context.Context) (bool, string) {
		return p.serviceFn(ctx, node.Address, node.ServicePort, cfg)
	})

	if node.HasHTTPService {
		hc.HTTP = p.run(ctx, cfg.HTTPTimeout, func(ctx context.Context) (bool, string) {
			return p.httpFn(ctx, node.Address, cfg)
		})
	}

	hc.Status = DeriveStatus(hc.Ping, hc.Service, hc.HTTP)
	return hc
}

// run executes one sub-probe with its own deadline and folds the outcome
// into a Result. Latency is recorded only on success.
func (p *Prober) run(ctx context.Context, timeout time.Duration, fn func(context.Context) (bool, string)) Result {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	ok, errText := fn(probeCtx)

	r := Result{Attempted: true, Success: ok}
	if ok {
		r.Latency = time.Since(start)
	} else {
		r.Error = errText
	}
	return r
}

// pingProbe shells out to the system ping for a single ICMP echo.
func pingProbe(ctx context.Context, address string, cfg Config) (bool, string) {
	waitSecs := int(cfg.PingTimeout / time.Second)
	if waitSecs < 1 {
		waitSecs = 1
	}

	cmd := exec.CommandContext(ctx, "ping", "-c", "1", "-W", strconv.Itoa(waitSecs), address)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return false, "ping timed out"
		}
		return false, fmt.Sprintf("ping failed: %s", firstLine(out, err))
	}
	return true, ""
}

// serviceProbe dials the node's service port over TCP.
func serviceProbe(ctx context.Context, address string, port int, cfg Config) (bool, string) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return false, fmt.Sprintf("port %d unreachable: %v", port, err)
	}
	_ = conn.Close()
	return true, ""
}

// httpProbe issues a GET against the node's web service. Responses below 500
// count as alive; the service answered even if it refused the request.
func httpProbe(ctx context.Context, address string, cfg Config) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+address, nil)
	if err != nil {
		return false, fmt.Sprintf("http request setup failed: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Sprintf("http check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return false, fmt.Sprintf("http returned %d", resp.StatusCode)
	}
	return true, ""
}

// firstLine trims command output down to one line of diagnostic text,
// falling back to the error itself.
func firstLine(out []byte, err error) string {
	for i, b := range out {
		if b == '\n' {
			out = out[:i]
			break
		}
	}
	if len(out) == 0 {
		return err.Error()
	}
	if len(out) > 100 {
		out = out[:100]
	}
	return string(out)
}
