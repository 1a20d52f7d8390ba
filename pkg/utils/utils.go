package utils

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func GetRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// ParseInt parses value and clamps it to [min, max]. Empty or invalid input
// yields def.
func ParseInt(value string, def, min, max int) int {
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	if i < min {
		return min
	}
	if i > max {
		return max
	}
	return i
}

// ParseFloat is ParseInt for crop parameters.
func ParseFloat(value string, def, min, max float64) float64 {
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}

// IsAllowedOrigin reports whether origin matches any of the patterns.
func IsAllowedOrigin(origin string, patterns []string) bool {
	if origin == "" {
		return false
	}
	clean := cleanOrigin(origin)
	for _, p := range patterns {
		if MatchOrigin(clean, p) {
			return true
		}
	}
	return false
}

func cleanOrigin(originURL string) string {
	u, err := url.Parse(originURL)
	if err != nil {
		return originURL
	}
	if u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return originURL
}

// MatchOrigin supports "*", exact origins, "https://*.x.com" (subdomains only)
// and "https://**.x.com" (domain and subdomains).
func MatchOrigin(origin, pattern string) bool {
	if pattern == "*" || origin == pattern {
		return true
	}

	if strings.Contains(pattern, "**.") {
		base := strings.Replace(pattern, "**.", "", 1)
		if origin == base {
			return true
		}
		if strings.HasSuffix(origin, "."+removeProtocol(base)) {
			return true
		}
		return false
	}

	if strings.Contains(pattern, "*.") {
		parts := strings.Split(pattern, "*")
		if len(parts) == 2 {
			prefix, suffix := parts[0], parts[1]
			if strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) && len(origin) > len(prefix)+len(suffix) {
				middle := origin[len(prefix) : len(origin)-len(suffix)]
				return !strings.Contains(middle, "/")
			}
		}
	}
	return false
}

func removeProtocol(urlStr string) string {
	urlStr = strings.TrimPrefix(urlStr, "https://")
	return strings.TrimPrefix(urlStr, "http://")
}
