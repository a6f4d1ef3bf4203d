package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"
)

// BlockedAddressError is returned when a host resolves to an address that is
// not publicly routable.
type BlockedAddressError struct {
	Host string
	Addr netip.Addr
}

func (e *BlockedAddressError) Error() string {
	if e.Host == "" || e.Host == e.Addr.String() {
		return fmt.Sprintf("address %s is not publicly routable", e.Addr)
	}
	return fmt.Sprintf("host %s resolves to %s, which is not publicly routable", e.Host, e.Addr)
}

// reserved ranges that netip has no predicate for
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// IsPublicAddr reports whether addr is a globally routable unicast address.
// Loopback, private, link-local (cloud metadata included), CGNAT, multicast
// and unspecified addresses are not.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// CheckPublicHost resolves the host of urlStr and fails with a
// *BlockedAddressError when any of its addresses is not public.
func CheckPublicHost(ctx context.Context, urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Hostname() == "" {
		return &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}
	host := parsed.Hostname()

	var addrs []netip.Addr
	if addr, err := netip.ParseAddr(host); err == nil {
		addrs = []netip.Addr{addr}
	} else if addrs, err = net.DefaultResolver.LookupNetIP(ctx, "ip", host); err != nil {
		return &Error{URL: urlStr, Message: "failed to resolve host", Cause: err}
	}

	for _, addr := range addrs {
		if !IsPublicAddr(addr) {
			return &BlockedAddressError{Host: host, Addr: addr.Unmap()}
		}
	}
	return nil
}

// publicOnlyControl rejects connections to non-public addresses after DNS
// resolution, so redirects and rebinding are covered as well.
func publicOnlyControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !IsPublicAddr(addr) {
		return &BlockedAddressError{Addr: addr.Unmap()}
	}
	return nil
}

// PublicClient returns an HTTP client that only connects to public addresses.
// Proxies are disabled since they would connect on the client's behalf.
func PublicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   publicOnlyControl,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}
