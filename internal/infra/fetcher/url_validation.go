// Package fetcher provides full-text content extraction for articles whose
// RSS descriptions are too short to summarize well.
package fetcher

import (
	"fmt"
	"net"
	"net/url"

	"world-digest/internal/usecase/digest"
)

// validateURL checks a URL before any HTTP request is made. Only http and
// https schemes are accepted, and when denyPrivateIPs is set the hostname is
// resolved and every address checked against the private ranges. Feed entries
// are attacker-controlled input, so this runs on the initial URL and on every
// redirect target.
func validateURL(urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", digest.ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", digest.ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", digest.ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", digest.ErrInvalidURL, hostname, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: hostname '%s' resolves to %s", digest.ErrPrivateIP, hostname, ip.String())
		}
	}

	return nil
}

// isPrivateIP reports whether ip is loopback, private (RFC 1918 / fc00::/7),
// or link-local. Both IPv4 and IPv6 are covered.
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}

	if ip.IsPrivate() {
		return true
	}

	if ip.IsLinkLocalUnicast() {
		return true
	}

	return false
}
