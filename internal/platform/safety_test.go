package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsDevRun(t *testing.T) {
	if !IsDevRun() {
		t.Error("expected go test binary to be detected as a dev run")
	}
}

func TestResolveVaultPath(t *testing.T) {
	devRoot := filepath.Join(os.TempDir(), "snapnote-dev")
	inTemp := filepath.Join(os.TempDir(), "already-safe")

	tests := []struct {
		name      string
		path      string
		forceTemp bool
		want      string
	}{
		{"unsafe keeps path", "notes", false, "notes"},
		{"unsafe empty is cwd", "", false, "."},
		{"relative is re-rooted", "notes", true, filepath.Join(devRoot, "notes")},
		{"nested keeps base name", "a/b/vault", true, filepath.Join(devRoot, "vault")},
		{"empty uses default", "", true, filepath.Join(devRoot, "default")},
		{"dot uses default", ".", true, filepath.Join(devRoot, "default")},
		{"parent uses default", "..", true, filepath.Join(devRoot, "default")},
		{"temp path is trusted", inTemp, true, inTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveVaultPath(tt.path, tt.forceTemp); got != tt.want {
				t.Errorf("ResolveVaultPath(%q, %v) = %q, want %q", tt.path, tt.forceTemp, got, tt.want)
			}
		})
	}
}
