package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDir = "kpiboard"

// DataPath returns the location of name inside the kpiboard data directory.
// XDG_DATA_HOME is honoured only when absolute; otherwise the path falls
// under ~/.local/share. The directory is not created.
func DataPath(name string) (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if !filepath.IsAbs(base) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving data directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, appDir, name), nil
}
