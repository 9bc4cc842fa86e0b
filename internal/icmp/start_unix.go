//go:build linux || darwin

package icmp

import (
	"context"

	"github.com/macrat/go-parallel-pinger"
)

// startPinger starts the socket.
// If the default privilege mode is not permitted and the mode is not forced by PrivilegedEnv, it retries in the other mode.
func (p *sharedPinger) startPinger(ctx context.Context) error {
	err := p.v4.Start(ctx)
	if err == nil || privilegedSetting() != nil {
		return err
	}

	p.v4.SetPrivileged(!pinger.DEFAULT_PRIVILEGED)
	return p.v4.Start(ctx)
}
