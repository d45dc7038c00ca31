package authz

import "strings"

// MatchPattern reports whether pattern grants required. Both use the
// "resource:action" form and either half of the pattern may be "*":
//
//   - "*:*"                matches everything
//   - "prescription:*"     matches "prescription:read", "prescription:delete"
//   - "*:read"             matches "appointment:read", "prescription:read"
//   - "prescription:read"  matches only itself
//
// Values without a separator are compared whole, with "*" matching anything.
func MatchPattern(pattern, required string) bool {
	if pattern == required || pattern == "*" || pattern == "*:*" {
		return true
	}

	patResource, patAction, patOK := strings.Cut(pattern, ":")
	reqResource, reqAction, reqOK := strings.Cut(required, ":")
	if !patOK || !reqOK {
		return matchWildcard(pattern, required)
	}
	return matchWildcard(patResource, reqResource) && matchWildcard(patAction, reqAction)
}

// MatchAny reports whether any pattern grants required.
func MatchAny(patterns []string, required string) bool {
	for _, p := range patterns {
		if MatchPattern(p, required) {
			return true
		}
	}
	return false
}

func matchWildcard(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
