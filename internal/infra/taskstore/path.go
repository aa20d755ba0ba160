package taskstore

import (
	"os"
	"path/filepath"
	"strings"

	"qcloud/internal/domain"
)

// ResolveDefaultPath returns the default location of the task store.
func ResolveDefaultPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			base = filepath.Join(home, ".local", "state")
		}
	}
	if base == "" {
		if dir, err := os.UserConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
			base = dir
		}
	}
	if base == "" {
		base = "."
	}
	return filepath.Join(base, "qcloud", domain.DefaultTaskStoreFile)
}
