package icmp

import (
	"os"
	"strings"
)

// PrivilegedEnv is the environment variable to force privileged (raw socket) or unprivileged (datagram socket) ICMP.
const PrivilegedEnv = "KLIMOZAWR_PING_PRIVILEGED"

// privilegedSetting reads PrivilegedEnv.
// It returns nil if the variable is not set or has an unknown value, which means to use the library's default.
func privilegedSetting() *bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(PrivilegedEnv))) {
	case "1", "true", "yes", "on":
		p := true
		return &p
	case "0", "false", "no", "off":
		p := false
		return &p
	default:
		return nil
	}
}
