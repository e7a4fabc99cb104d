// Package env provides the small getenv/getenv-int helpers this module's
// command entrypoints use to read bootstrap knobs, in the same shape as
// the teacher gateway's config loader
// (internal/services/gateway/cmd/config.go).
package env

import (
	"os"
	"strconv"
)

// Str returns the environment variable k, or d if unset or empty.
func Str(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// Int returns the environment variable k parsed as an int, or d if unset,
// empty, or unparseable.
func Int(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
