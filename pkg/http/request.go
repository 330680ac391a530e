package http

import (
	"net/http"
	"strings"
)

// unknownClientIP is returned when no forwarding header carries an address.
// All such requests share one rate-limit bucket.
const unknownClientIP = "unknown"

// ExtractClientIP derives the caller's address from the proxy headers set by
// the hosting platform.
//
// Order:
// 1. First comma-separated segment of X-Forwarded-For
// 2. X-Real-IP
// 3. The literal "unknown"
//
// RemoteAddr is ignored; behind the platform proxy it is the proxy itself.
func ExtractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return unknownClientIP
}
