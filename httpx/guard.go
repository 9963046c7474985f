package httpx

import "net"

// isBlockedIP reports whether ip falls into a non-unicast range that the
// SSRF guard must reject: loopback, link-local (unicast or multicast),
// private, unspecified, or multicast (spec.md §4.1, I6).
func isBlockedIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	switch {
	case ip.IsLoopback():
		return true
	case ip.IsLinkLocalUnicast():
		return true
	case ip.IsLinkLocalMulticast():
		return true
	case ip.IsPrivate():
		return true
	case ip.IsUnspecified():
		return true
	case ip.IsMulticast():
		return true
	default:
		return false
	}
}

// guardAddr inspects a resolved IP for SSRF-blocked ranges. It is called
// after DNS resolution but before the dial completes, so the guard sees
// the actual connected address rather than the caller's hostname (which
// DNS rebinding could otherwise bypass).
func guardAddr(ip net.IP, allowLocal bool) error {
	if allowLocal {
		return nil
	}
	if isBlockedIP(ip) {
		return ErrInsecureConnection
	}
	return nil
}
