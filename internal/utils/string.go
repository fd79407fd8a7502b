package utils

import "strings"

// BoundedEqual compares at most n runes of a and b, case-sensitively.
// Strings that agree on their first n runes are equal.
func BoundedEqual(a, b string, n int) bool {
	if n <= 0 {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) > n {
		ra = ra[:n]
	}
	if len(rb) > n {
		rb = rb[:n]
	}
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if ra[i] != rb[i] {
			return false
		}
	}
	return true
}

// SplitList splits s on sep the way strtok does: runs of separators collapse and
// empty tokens are never produced. Tokens are not trimmed. At most max tokens are
// returned; the rest are dropped. max <= 0 means no cap.
func SplitList(s, sep string, max int) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(sep, r)
	})
	if max > 0 && len(fields) > max {
		fields = fields[:max]
	}
	return fields
}

// IndexBounded returns the index of the first element of list equal to s under
// BoundedEqual, or -1.
func IndexBounded(list []string, s string, n int) int {
	for i, item := range list {
		if BoundedEqual(item, s, n) {
			return i
		}
	}
	return -1
}
