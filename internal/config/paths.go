package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".outreach"

// DataDir returns the base data directory for outreach.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// CoreConfigPath returns the path to the TOML configuration file.
func CoreConfigPath() (string, error) {
	return dataPath("config.toml")
}

// TokenPath returns the path to the daemon bearer token file.
func TokenPath() (string, error) {
	return dataPath("token")
}

// TasksDBPath returns the path to the bbolt database holding the local task queue.
func TasksDBPath() (string, error) {
	return dataPath("outreach.db")
}

// TasksFilePath returns the path to the JSON task queue used by the file backend.
func TasksFilePath() (string, error) {
	return dataPath("tasks.json")
}

// UILogPath returns the log file written while the terminal UI owns the screen.
func UILogPath() (string, error) {
	return dataPath("ui.log")
}

func dataPath(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
