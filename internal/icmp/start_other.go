//go:build !linux && !darwin

package icmp

import (
	"context"
)

func (p *sharedPinger) startPinger(ctx context.Context) error {
	return p.v4.Start(ctx)
}
