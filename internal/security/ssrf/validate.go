package ssrf

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Resolver abstracts DNS resolution so callers can fake it in tests.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// DefaultResolver resolves via the standard library net package.
var DefaultResolver Resolver = net.DefaultResolver

var blockedHostnames = map[string]bool{
	"localhost":                true,
	"metadata.google.internal": true,
}

var blockedHostnameSuffixes = []string{".localhost", ".local", ".internal"}

// ValidateURL enforces scheme, hostname, and resolved-IP restrictions on a
// URL before a tool is allowed to fetch it. DNS resolution failures are
// permitted through (the caller's fetch will fail on its own); only URLs
// that resolve to a blocked range are rejected here.
func ValidateURL(ctx context.Context, rawURL string, resolver Resolver) error {
	if resolver == nil {
		resolver = DefaultResolver
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return newBlocked(fmt.Sprintf("blocked scheme: %s", u.Scheme))
	}
	host := u.Hostname()
	if host == "" {
		return newBlocked("url has no host")
	}
	return ValidateHost(ctx, host, resolver)
}

// ValidateHost validates a bare hostname or IP literal the same way
// ValidateURL does, without requiring a full URL.
func ValidateHost(ctx context.Context, host string, resolver Resolver) error {
	if resolver == nil {
		resolver = DefaultResolver
	}
	normalized := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	normalized = trimBrackets(normalized)
	if normalized == "" {
		return newBlocked("empty host")
	}

	if blockedHostnames[normalized] {
		return newBlocked(fmt.Sprintf("blocked hostname: %s", host))
	}
	for _, suffix := range blockedHostnameSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			return newBlocked(fmt.Sprintf("blocked hostname suffix: %s", host))
		}
	}

	if ip := net.ParseIP(normalized); ip != nil {
		if IsBlockedIP(ip) {
			return newBlocked(fmt.Sprintf("blocked IP address: %s", host))
		}
		return nil
	}

	addrs, err := resolver.LookupIPAddr(ctx, normalized)
	if err != nil {
		// DNS failures are permitted; the fetch itself will fail later.
		return nil
	}
	if len(addrs) == 0 {
		return nil
	}
	for _, a := range addrs {
		if IsBlockedIP(a.IP) {
			return newBlocked(fmt.Sprintf("blocked: %s resolves to a private/internal address (%s)", host, a.IP))
		}
	}
	return nil
}
