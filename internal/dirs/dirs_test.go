package dirs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestConfigDirHonorsXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, "fauxbar"); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}

	file, err := ConfigFile()
	if err != nil {
		t.Fatalf("ConfigFile() error = %v", err)
	}
	if want := filepath.Join(base, "fauxbar", "config.yaml"); file != want {
		t.Errorf("ConfigFile() = %q, want %q", file, want)
	}
}

func TestEnsure(t *testing.T) {
	if err := Ensure(""); err == nil {
		t.Error("Ensure(\"\") expected error")
	}
	p := filepath.Join(t.TempDir(), "a", "b")
	if err := Ensure(p); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
		t.Errorf("Ensure() did not create %q", p)
	}
}
