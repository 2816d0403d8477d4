package config

import (
	"os"
	"path/filepath"
)

// ProjectFileName is the per-project config file looked up from the
// working directory upwards.
const ProjectFileName = "taxopick.yaml"

// FindConfigFile returns the config file to read, or "" when none exists.
// A taxopick.yaml in the working directory or one of its parents wins over
// the user config file.
func FindConfigFile() string {
	if dir, err := os.Getwd(); err == nil {
		if p, ok := findProjectFile(dir); ok {
			return p
		}
	}
	if p := DefaultPath(); p != "" {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// DefaultPath is $XDG_CONFIG_HOME/taxopick/config.yaml (or the platform
// equivalent). It returns "" when no config dir can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "taxopick", "config.yaml")
}

// findProjectFile walks up from dir looking for ProjectFileName.
func findProjectFile(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}
