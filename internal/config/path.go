// Package config holds small helpers for interpreting configured values,
// such as filesystem paths read from flags or environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a user-supplied path into one the os package can
// open: a leading ~ becomes the current user's home directory and $VAR
// references are substituted from the environment. If the home directory
// cannot be determined the ~ is left as-is.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
