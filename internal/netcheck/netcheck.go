// Package netcheck tells whether the host itself is connected to the network.
package netcheck

import (
	"context"
	"net"
	"time"
)

const (
	// DefaultAddress is a public DNS server that answers on TCP.
	DefaultAddress = "1.1.1.1:53"

	DefaultTimeout = 1500 * time.Millisecond
)

// Online reports whether a TCP connection to address can be established within timeout.
// Empty address and non-positive timeout mean the defaults.
func Online(ctx context.Context, address string, timeout time.Duration) bool {
	if address == "" {
		address = DefaultAddress
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
