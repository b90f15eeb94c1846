package ssrf

import "net"

// blockedCIDRs is the exact range list from the security guard contract:
// current-network, private, carrier-grade NAT, loopback, link-local
// (including the cloud metadata address), the IETF protocol-assignments
// block, the benchmarking block, and IPv6 loopback.
var blockedCIDRs = mustParseCIDRs(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"::1/128",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic("ssrf: invalid built-in CIDR " + c + ": " + err.Error())
		}
		nets = append(nets, n)
	}
	return nets
}

// IsBlockedIP reports whether ip falls inside any blocked range.
func IsBlockedIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range blockedCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// IsBlockedIPString parses s as an IP literal and checks it against the
// blocked ranges. It returns false (not blocked) if s does not parse as an
// IP — callers resolve hostnames separately.
func IsBlockedIPString(s string) bool {
	ip := net.ParseIP(trimBrackets(s))
	if ip == nil {
		return false
	}
	return IsBlockedIP(ip)
}

func trimBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}
