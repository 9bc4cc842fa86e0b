package icmp

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/macrat/go-parallel-pinger"
)

// sharedPinger owns the process-wide IPv4 echo socket.
//
// go-parallel-pinger matches each reply to its request by ICMP identifier and sequence number,
// and hands the result to the waiting Ping call through a per-call value.
// So one started pinger can be used from many goroutines at once.
type sharedPinger struct {
	v4   *pinger.Pinger
	stop context.CancelFunc
}

func (p *sharedPinger) Start() error {
	p.v4 = pinger.NewIPv4()

	if privileged := privilegedSetting(); privileged != nil {
		p.v4.SetPrivileged(*privileged)
	}

	ctx, stop := context.WithCancel(context.Background())
	p.stop = stop

	if err := p.startPinger(ctx); err != nil {
		p.Stop()
		return err
	}

	return nil
}

func (p *sharedPinger) Stop() {
	p.v4 = nil
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}

var defaultPinger = newSharedResource(&sharedPinger{})

// PingerEchoer is an Echoer that uses go-parallel-pinger.
// All PingerEchoers in a process share one socket.
type PingerEchoer struct {
	ping atomic.Pointer[pinger.Pinger]
}

// Start acquires the shared socket.
func (e *PingerEchoer) Start() error {
	if e.ping.Load() != nil {
		return nil
	}

	p, err := defaultPinger.Acquire()
	if err != nil {
		return err
	}
	e.ping.Store(p.v4)
	return nil
}

// Close releases the shared socket. The socket is closed when the last user releases it.
func (e *PingerEchoer) Close() {
	if e.ping.Swap(nil) != nil {
		defaultPinger.Release()
	}
}

// Echo sends a single echo request and waits for the reply until ctx is done.
func (e *PingerEchoer) Echo(ctx context.Context, target *net.IPAddr) (time.Duration, error) {
	p := e.ping.Load()
	if p == nil {
		return 0, ErrNotStarted
	}

	timeout := time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	result, err := p.Ping(ctx, target, 1, timeout)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ErrTimeout
		}
		return 0, err
	}

	if result.Recv == 0 {
		return 0, ErrTimeout
	}
	return result.AvgRTT, nil
}
