package webhook

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// AllowList holds a gateway's permitted source addresses, mixing exact
// IPs and CIDR ranges
type AllowList struct {
	addrs    []netip.Addr
	prefixes []netip.Prefix
}

// NewAllowList parses the entries; malformed entries are dropped
func NewAllowList(entries []string) *AllowList {
	l := &AllowList{}
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if prefix, err := netip.ParsePrefix(entry); err == nil {
				l.prefixes = append(l.prefixes, prefix.Masked())
			}
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			l.addrs = append(l.addrs, addr.Unmap())
		}
	}
	return l
}

// Allowed reports whether the given address string is in the list.
// Malformed input is rejected, never raised.
func (l *AllowList) Allowed(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, a := range l.addrs {
		if a == addr {
			return true
		}
	}
	for _, p := range l.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP extracts the caller address from the fixed header-precedence
// chain: proxy header, real-IP header, first forwarded-for entry, then
// the raw socket address
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
