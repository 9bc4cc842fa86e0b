package klimozawr

import (
	"net"
	"regexp"
	"strings"
)

var hostLabelPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// IsIPv4 reports whether s is a literal dotted-quad IPv4 address.
func IsIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil && !strings.Contains(s, ":")
}

// IsValidHostname reports whether s is a syntactically valid DNS hostname.
//
// Names that look like a dotted-quad, such as "999.999.1.1", are rejected so that a mistyped address is not resolved as a name.
func IsValidHostname(s string) bool {
	host := strings.TrimSpace(s)
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return false
	}

	labels := strings.Split(host, ".")
	if len(labels) == 4 && allDigits(labels) {
		return false
	}

	for _, label := range labels {
		if label == "" || len(label) > 63 || !hostLabelPattern.MatchString(label) {
			return false
		}
	}
	return true
}

func allDigits(labels []string) bool {
	for _, l := range labels {
		if l == "" {
			return false
		}
		for _, c := range l {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// IsValidTarget reports whether s can be used as an endpoint address.
func IsValidTarget(s string) bool {
	return IsIPv4(s) || IsValidHostname(s)
}
