package icmp

import (
	"context"
	"net"

	"github.com/klimozawr/klimozawr/internal/kzerr"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// LookupIPFunc is the signature of net.Resolver.LookupIP.
type LookupIPFunc func(ctx context.Context, network, host string) ([]net.IP, error)

// Resolver turns endpoint addresses into literal IPv4 addresses.
type Resolver struct {
	// LookupIP is used to resolve hostnames. net.DefaultResolver.LookupIP is used if nil.
	LookupIP LookupIPFunc
}

// Resolve returns address as is if it is a literal IPv4 address, otherwise looks up the first IPv4 address of the host.
func (r Resolver) Resolve(ctx context.Context, address string) (string, error) {
	if api.IsIPv4(address) {
		return address, nil
	}

	if !api.IsValidHostname(address) {
		return "", kzerr.New(ErrBadAddress, nil, "invalid address: %q", address)
	}

	lookup := r.LookupIP
	if lookup == nil {
		lookup = net.DefaultResolver.LookupIP
	}

	ips, err := lookup(ctx, "ip4", address)
	if err != nil {
		return "", kzerr.New(ErrResolve, err, "%s", address)
	}

	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", kzerr.New(ErrResolve, nil, "%s: no IPv4 address", address)
}
