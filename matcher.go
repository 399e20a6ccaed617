package tollgate

import "strings"

// matchGlob checks if a pattern matches a value with simple glob support.
// Supports trailing '*' (e.g., "manage:*" matches "manage:deals").
func matchGlob(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if pattern == value {
		return true
	}
	if strings.HasSuffix(pattern, ":*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(value, prefix)
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(value, prefix)
	}
	return false
}

// isWildcard reports whether the permission token carries a glob.
func isWildcard(p Permission) bool {
	return strings.HasSuffix(string(p), "*")
}

// matchPermission checks if a granted permission matches a required one.
// Permission format: "verb:resource" (e.g., "manage:deals"). A grant may
// carry a wildcard: "manage:*" matches "manage:deals".
func matchPermission(granted, required Permission) bool {
	if granted == required {
		return true
	}
	return matchGlob(string(granted), string(required))
}
