package paths

import (
	"path/filepath"
	"testing"
)

func TestExpandWorkingDir(t *testing.T) {
	t.Setenv("HOME", "/home/dev")

	tests := []struct {
		in   string
		want string
	}{
		{"", "/home/dev"},
		{"~", "/home/dev"},
		{"~/projects", "/home/dev/projects"},
		{"projects/api", "/home/dev/projects/api"},
		{"/opt/work", "/opt/work"},
		{"/opt/work/../other", "/opt/other"},
	}

	for _, tt := range tests {
		if got := ExpandWorkingDir(tt.in); got != tt.want {
			t.Errorf("ExpandWorkingDir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandWorkingDirNoHome(t *testing.T) {
	t.Setenv("HOME", "")

	if got := ExpandWorkingDir(""); got != FallbackDir {
		t.Errorf("ExpandWorkingDir(\"\") = %q, want %q", got, FallbackDir)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	if got := EnsureDir(dir); got != dir {
		t.Errorf("EnsureDir(%q) = %q", dir, got)
	}

	missing := filepath.Join(dir, "missing")
	if got := EnsureDir(missing); got != FallbackDir {
		t.Errorf("EnsureDir(%q) = %q, want %q", missing, got, FallbackDir)
	}
}
