package util

import (
	"strconv"
)

// MustParseUint converts a string to an unsigned integer, returning 0 when
// parsing fails.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// IntPtr returns a pointer to v. Handy for nullable duration fields.
func IntPtr(v int) *int {
	return &v
}
