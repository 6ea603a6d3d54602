package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultStateDirName is created in the user's home directory.
const DefaultStateDirName = ".ex"

// DefaultStateDir returns ~/.ex.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "Locate home directory failed")
	}
	return filepath.Join(home, DefaultStateDirName), nil
}

func FilePath(stateDir string) string {
	return joinState(stateDir, FileName)
}

func CachePath(stateDir string) string {
	return joinState(stateDir, CacheName)
}

func joinState(stateDir, name string) string {
	return filepath.Join(stateDir, name)
}
