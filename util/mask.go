package util

import "strings"

const mask = "***"

// MaskSecret keeps the first visible bytes of s and hides the rest. Strings
// no longer than visible are hidden entirely.
func MaskSecret(s string, visible int) string {
	if len(s) <= visible {
		return mask
	}
	return s[:visible] + mask
}

// MaskEmail keeps the first letter of the local part and the domain, so
// logs can tell accounts apart without recording the address.
//
//	jane.doe@example.com -> j***@example.com
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" || domain == "" {
		return mask
	}
	return local[:1] + mask + "@" + domain
}
