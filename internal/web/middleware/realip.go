package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For,
// but only when the connection comes from a trusted proxy CIDR.
// Untrusted clients cannot spoof headers to dodge rate limiting.
// With no trusted proxies configured, RemoteAddr is left alone.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	var trustedNets []*net.IPNet
	for _, cidr := range trustedCIDRs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Accept bare IPs like "127.0.0.1" as /32 (or /128).
			if ip := net.ParseIP(cidr); ip != nil {
				mask := net.CIDRMask(128, 128)
				if ip.To4() != nil {
					mask = net.CIDRMask(32, 32)
				}
				trustedNets = append(trustedNets, &net.IPNet{IP: ip, Mask: mask})
			} else {
				slog.Warn("realip: invalid trusted proxy CIDR, skipping",
					"cidr", cidr,
					"error", err,
				)
			}
			continue
		}
		trustedNets = append(trustedNets, network)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remoteIP := extractIP(r.RemoteAddr)

			if isTrusted(remoteIP, trustedNets) {
				if rip := r.Header.Get("X-Real-IP"); rip != "" {
					if ip := net.ParseIP(strings.TrimSpace(rip)); ip != nil {
						r.RemoteAddr = ip.String()
					}
				} else if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
					// First entry in the chain is the original client.
					candidate := xff
					if idx := strings.Index(xff, ","); idx > 0 {
						candidate = xff[:idx]
					}
					if ip := net.ParseIP(strings.TrimSpace(candidate)); ip != nil {
						r.RemoteAddr = ip.String()
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractIP parses an IP address from a host:port string or plain IP.
func extractIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}

// isTrusted checks if an IP is within any of the trusted networks.
func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
