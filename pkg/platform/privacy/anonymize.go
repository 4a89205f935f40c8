// Package privacy provides utilities for handling personally identifiable
// information before it reaches logs.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP truncates an IP address to remove the host-identifying portion.
//
// IPv4 addresses have the last octet zeroed ("192.168.1.47" -> "192.168.1.0"),
// masking to a /24 network. IPv6 addresses keep only the /48 prefix
// ("2001:db8:85a3::8a2e:370:7334" -> "2001:db8:85a3::").
//
// The security log stores the full address for abuse investigation; this
// helper is for request logs, which do not need to identify individuals.
//
// Returns "invalid" for unparseable addresses and "unknown" for empty strings.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	// IPv6 is 16 bytes, /48 prefix = first 6 bytes.
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}
