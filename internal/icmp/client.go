// Package icmp is the ICMP echo client of the monitoring engine.
//
// A Client wraps an Echoer, the expensive OS-level echo capability, and is safe for concurrent use.
// Every call keeps its reply in its own local values; the Client has no per-call state.
package icmp

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/klimozawr/klimozawr/internal/kzerr"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// SamplesPerTick is the count of echo requests in one tick.
const SamplesPerTick = 3

var (
	ErrTimeout     = errors.New("echo timed out")
	ErrUnreachable = errors.New("echo failed")
	ErrBadAddress  = errors.New("bad address")
	ErrResolve     = errors.New("failed to resolve host")
	ErrNotStarted  = errors.New("icmp client is not started")
)

// Code is the outcome kind of a single echo.
type Code int

const (
	CodeOK Code = iota
	CodeTimeout
	CodeUnreachable
	CodeBadAddress
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeTimeout:
		return "timeout"
	case CodeUnreachable:
		return "unreachable"
	case CodeBadAddress:
		return "bad-address"
	default:
		return "unknown"
	}
}

// Reply is the result of a single echo request.
type Reply struct {
	OK   bool
	RTT  time.Duration
	Code Code
	Err  error
}

// Sample converts Reply into a metrics sample. Every failure kind is just a lost sample.
func (r Reply) Sample() api.Sample {
	return api.Sample{OK: r.OK, RTT: r.RTT}
}

// Echoer sends one echo request to target and waits for the reply until ctx is done.
//
// Implementations must be safe for concurrent use, and must not share reply buffers between calls.
type Echoer interface {
	Start() error
	Echo(ctx context.Context, target *net.IPAddr) (time.Duration, error)
	Close()
}

// Client probes endpoints by ICMP echo.
type Client struct {
	echoer Echoer
}

// New creates a Client that uses the shared go-parallel-pinger socket.
func New() *Client {
	return NewWithEchoer(&PingerEchoer{})
}

// NewWithEchoer creates a Client with a custom Echoer.
func NewWithEchoer(e Echoer) *Client {
	return &Client{echoer: e}
}

// Start acquires the echo capability. It has to be called once before probing.
func (c *Client) Start() error {
	return c.echoer.Start()
}

// Close releases the echo capability.
func (c *Client) Close() {
	c.echoer.Close()
}

// ProbeOnce sends one echo request to address.
//
// address has to be a literal IPv4 address. Anything else fails immediately with ErrBadAddress, without sending anything.
func (c *Client) ProbeOnce(ctx context.Context, address string, timeout time.Duration) Reply {
	if !api.IsIPv4(address) {
		return Reply{
			Code: CodeBadAddress,
			Err:  kzerr.New(ErrBadAddress, nil, "not an IPv4 address: %q", address),
		}
	}
	target := &net.IPAddr{IP: net.ParseIP(address).To4()}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rtt, err := c.echoer.Echo(ctx, target)
	switch {
	case err == nil:
		return Reply{OK: true, RTT: rtt, Code: CodeOK}
	case errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		return Reply{Code: CodeTimeout, Err: kzerr.New(ErrTimeout, nil, "%s: no reply in %s", address, timeout)}
	default:
		return Reply{Code: CodeUnreachable, Err: kzerr.New(ErrUnreachable, err, "%s", address)}
	}
}

// ProbeThree sends SamplesPerTick echo requests to address one after another.
//
// Each request has its own timeout. If ctx is cancelled, the remaining requests are not sent and count as lost.
func (c *Client) ProbeThree(ctx context.Context, address string, timeout time.Duration) [SamplesPerTick]api.Sample {
	var samples [SamplesPerTick]api.Sample

	for i := range samples {
		if ctx.Err() != nil {
			break
		}
		samples[i] = c.ProbeOnce(ctx, address, timeout).Sample()
	}

	return samples
}
