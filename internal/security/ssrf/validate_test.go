package ssrf

import (
	"context"
	"net"
	"testing"
)

type stubResolver struct {
	addrs map[string][]net.IPAddr
	err   error
}

func (s stubResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.addrs[host], nil
}

func TestValidateURLRejectsNonHTTPScheme(t *testing.T) {
	if err := ValidateURL(context.Background(), "file:///etc/passwd", stubResolver{}); err == nil {
		t.Fatalf("expected file scheme to be rejected")
	}
}

func TestValidateURLRejectsMalformedURL(t *testing.T) {
	if err := ValidateURL(context.Background(), "://not a url", stubResolver{}); err == nil {
		t.Fatalf("expected malformed url to be rejected")
	}
}

func TestValidateURLRejectsLiteralLoopbackIP(t *testing.T) {
	if err := ValidateURL(context.Background(), "http://127.0.0.1/", stubResolver{}); err == nil {
		t.Fatalf("expected loopback IP literal to be rejected")
	}
}

func TestValidateURLRejectsCloudMetadataHostname(t *testing.T) {
	if err := ValidateURL(context.Background(), "http://metadata.google.internal/computeMetadata/v1/", stubResolver{}); err == nil {
		t.Fatalf("expected metadata hostname to be rejected")
	}
}

func TestValidateURLRejectsInternalSuffix(t *testing.T) {
	if err := ValidateURL(context.Background(), "http://db.internal/", stubResolver{}); err == nil {
		t.Fatalf("expected .internal suffix to be rejected")
	}
}

func TestValidateURLRejectsHostnameResolvingToPrivateRange(t *testing.T) {
	resolver := stubResolver{addrs: map[string][]net.IPAddr{
		"intranet.example.com": {{IP: net.ParseIP("10.1.2.3")}},
	}}
	if err := ValidateURL(context.Background(), "https://intranet.example.com/status", resolver); err == nil {
		t.Fatalf("expected hostname resolving to a private range to be rejected")
	}
}

func TestValidateURLAllowsHostnameResolvingToPublicRange(t *testing.T) {
	resolver := stubResolver{addrs: map[string][]net.IPAddr{
		"example.com": {{IP: net.ParseIP("93.184.216.34")}},
	}}
	if err := ValidateURL(context.Background(), "https://example.com/status", resolver); err != nil {
		t.Fatalf("expected public hostname to pass, got %v", err)
	}
}

func TestValidateURLPermitsDNSFailureThrough(t *testing.T) {
	resolver := stubResolver{err: &net.DNSError{Err: "no such host", Name: "nowhere.example", IsNotFound: true}}
	if err := ValidateURL(context.Background(), "https://nowhere.example/", resolver); err != nil {
		t.Fatalf("expected DNS failures to be permitted through, got %v", err)
	}
}

func TestValidateURLRejectsMissingHost(t *testing.T) {
	if err := ValidateURL(context.Background(), "http:///path", stubResolver{}); err == nil {
		t.Fatalf("expected a URL with no host to be rejected")
	}
}

func TestIsBlockedIPCoversPrivateAndMetadataRanges(t *testing.T) {
	cases := []struct {
		ip      string
		blocked bool
	}{
		{"10.0.0.5", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"172.16.0.1", true},
		{"127.0.0.1", true},
		{"8.8.8.8", false},
		{"93.184.216.34", false},
	}
	for _, tc := range cases {
		got := IsBlockedIP(net.ParseIP(tc.ip))
		if got != tc.blocked {
			t.Fatalf("IsBlockedIP(%s) = %v, want %v", tc.ip, got, tc.blocked)
		}
	}
}

func TestIsBlockedIPStringIgnoresNonIPInput(t *testing.T) {
	if IsBlockedIP(nil) {
		t.Fatalf("expected nil IP not to be blocked")
	}
	if IsBlockedIPString("not-an-ip") {
		t.Fatalf("expected a non-IP string to return false, not blocked")
	}
}

func TestValidateHostRejectsBracketedIPv6Loopback(t *testing.T) {
	if err := ValidateHost(context.Background(), "[::1]", stubResolver{}); err == nil {
		t.Fatalf("expected IPv6 loopback literal to be rejected")
	}
}
