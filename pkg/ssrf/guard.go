package ssrf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// DefaultDNSTimeout bounds hostname resolution so a slow resolver cannot
// stall registration or delivery paths.
const DefaultDNSTimeout = 5 * time.Second

// blockedPrefixes lists address ranges that outbound webhooks must never
// reach: loopback, RFC 1918 private, link-local, and their IPv6 equivalents.
// IPv4-mapped IPv6 addresses are unmapped before matching.
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
}

// LookupFunc resolves a hostname to addresses in both address families.
type LookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

// Guard validates outbound webhook URLs against server-side request forgery.
// The zero value is not usable; use New.
type Guard struct {
	lookup  LookupFunc
	timeout time.Duration
}

// Option configures a Guard.
type Option func(*Guard)

// WithLookup overrides DNS resolution, mainly for testing.
func WithLookup(fn LookupFunc) Option {
	return func(g *Guard) {
		if fn != nil {
			g.lookup = fn
		}
	}
}

// WithDNSTimeout bounds each hostname resolution.
func WithDNSTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New creates a guard using the system resolver by default.
func New(opts ...Option) *Guard {
	g := &Guard{
		lookup: func(ctx context.Context, host string) ([]netip.Addr, error) {
			return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		},
		timeout: DefaultDNSTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsInternalURL reports whether a URL points at internal infrastructure.
// Any parse or resolution failure counts as internal: the guard fails
// closed. It must run at registration time and again immediately before
// every delivery attempt to defend against DNS rebinding in between.
func (g *Guard) IsInternalURL(ctx context.Context, rawURL string) bool {
	return g.Validate(ctx, rawURL) != nil
}

// Validate returns nil only for well-formed http(s) URLs whose host
// resolves exclusively to public addresses. Errors wrap ErrInvalidURL for
// malformed input and ErrBlockedURL for internal targets, so create/update
// handlers can distinguish the two.
func (g *Guard) Validate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Join(ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q is not allowed", ErrInvalidURL, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	// Loopback hostnames are blocked outright, no resolution needed
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%w: loopback hostname %q", ErrBlockedURL, host)
	}

	// Literal IP addresses skip DNS entirely
	if addr, err := netip.ParseAddr(host); err == nil {
		if isBlockedAddr(addr) {
			return fmt.Errorf("%w: address %s is not publicly routable", ErrBlockedURL, addr)
		}
		return nil
	}

	resolveCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	addrs, err := g.lookup(resolveCtx, host)
	if err != nil || len(addrs) == 0 {
		// Unresolvable hosts are treated as internal (fail closed)
		return errors.Join(fmt.Errorf("%w: cannot resolve host %q", ErrBlockedURL, host), err)
	}

	for _, addr := range addrs {
		if isBlockedAddr(addr) {
			return fmt.Errorf("%w: host %q resolves to %s", ErrBlockedURL, host, addr)
		}
	}

	return nil
}

func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()

	if !addr.IsValid() || addr.IsUnspecified() {
		return true
	}

	for _, prefix := range blockedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
