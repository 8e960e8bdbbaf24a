package util

import (
	"net/url"
	"strings"
	"time"
)

// SanitizeFilename keeps letters, digits, space, dot, underscore and hyphen;
// every other rune becomes an underscore. Safe for use as a directory name.
func SanitizeFilename(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '.' || r == '_' || r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// HostOf returns the hostname (no port, no userinfo) of a URL, or "unknown"
// when the URL cannot be parsed or has no host.
func HostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}

// DateFolder formats t as YYYY-MM-DD for per-day download directories.
func DateFolder(t time.Time) string {
	return t.Format("2006-01-02")
}
