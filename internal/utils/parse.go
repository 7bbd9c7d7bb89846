// Package utils holds tiny parsing helpers shared by the HTTP handlers.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// number. Handlers use it for window parameters like ?days=, where a missing
// or garbled value should mean the default window, never an error response.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
