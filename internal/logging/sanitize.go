package logging

import (
	"net/url"
	"strings"
)

// SanitizeURL strips userinfo, query and fragment from a URL before it is
// logged, so user-pasted links with tokens do not leak into log files.
// Unparseable input is returned as-is.
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
