package config

import (
	"os"
	"path/filepath"
	"strings"
)

// expandPath resolves the tasks file path from config: $VAR and ${VAR}
// references are replaced from the environment, then a leading ~ becomes
// the user's home directory. Paths that cannot be expanded are returned
// unchanged.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
