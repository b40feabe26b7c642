package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if !strings.HasSuffix(dataDir, ".outreach") {
		t.Fatalf("unexpected data dir: %s", dataDir)
	}

	cases := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{name: "config", fn: CoreConfigPath, want: "config.toml"},
		{name: "token", fn: TokenPath, want: "token"},
		{name: "db", fn: TasksDBPath, want: "outreach.db"},
		{name: "tasks", fn: TasksFilePath, want: "tasks.json"},
		{name: "ui log", fn: UILogPath, want: "ui.log"},
	}
	for _, tc := range cases {
		path, err := tc.fn()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if want := filepath.Join(dataDir, tc.want); path != want {
			t.Fatalf("%s: got %q want %q", tc.name, path, want)
		}
	}
}
