// Package env reads the few settings needed before config is loaded, such as the log format.
package env

import (
	"os"
	"strings"
)

// Prefix namespaces webmarket variables, matching the envconfig prefix.
const Prefix = "WEBMARKET_"

// Get returns WEBMARKET_<key>, then the bare key, then fallback. Values are trimmed.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
