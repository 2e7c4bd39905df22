// Package browser classifies visiting user agents.
package browser

import "strings"

// restrictiveSignatures are user-agent substrings of in-app browsers known
// to block or interfere with automatic script-driven redirects. Matching
// is case-insensitive.
var restrictiveSignatures = []string{
	"micromessenger", // WeChat built-in browser
}

// IsRestrictive reports whether the user agent belongs to a restrictive
// in-app browser context. Such visitors get an interstitial page with a
// manual open action instead of an automatic redirect.
func IsRestrictive(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, sig := range restrictiveSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}
