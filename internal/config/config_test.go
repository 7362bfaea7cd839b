package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fauxbar/internal/engine"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "fauxbar"}
	pf := root.PersistentFlags()
	pf.Float64("start", 0, "")
	pf.Float64("stop-threshold", 96, "")
	pf.Int("interval", 30, "")
	pf.String("transition-effect", "ease-out", "")
	pf.Int("width", 40, "")
	return root
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := s.Engine(), engine.DefaultConfig(); got != want {
		t.Errorf("Engine() = %+v, want %+v", got, want)
	}
	if s.Animation.TransitionEffect != "ease-out" || s.Animation.TransitionSpeed != 0.3 {
		t.Errorf("transition = %q/%v, want ease-out/0.3", s.Animation.TransitionEffect, s.Animation.TransitionSpeed)
	}
	if s.Bar.Width != 40 || s.Log.Level != "warn" {
		t.Errorf("bar/log defaults = %+v / %+v", s.Bar, s.Log)
	}
	if d := Defaults(); d != s {
		t.Errorf("Defaults() = %+v, want %+v", d, s)
	}
}

func TestInitConfigFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fauxbar.yaml")
	content := []byte(`start: 10
end: 50
animation:
  stop_threshold: 90
  interval_delay: 16
  transition_effect: linear
bar:
  color: "#7D56F4"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FAUXBAR_BAR_WIDTH", "60")

	root := newRoot()
	if err := root.PersistentFlags().Set("stop-threshold", "80"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	v := viper.New()
	if err := Init(v, root, path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Start != 10 || s.End != 50 {
		t.Errorf("range = [%v, %v], want [10, 50]", s.Start, s.End)
	}
	// flag > env > config > default
	if s.Animation.StopThreshold != 80 {
		t.Errorf("StopThreshold = %v, want flag value 80", s.Animation.StopThreshold)
	}
	if s.Bar.Width != 60 {
		t.Errorf("Width = %v, want env value 60", s.Bar.Width)
	}
	if s.Animation.TransitionEffect != "linear" || s.Bar.Color != "#7D56F4" {
		t.Errorf("file values not applied: %+v %+v", s.Animation, s.Bar)
	}
	if got := s.Engine().TickInterval; got != 16*time.Millisecond {
		t.Errorf("TickInterval = %v, want 16ms", got)
	}
	if s.Animation.IncrementSpeed != 0.005 {
		t.Errorf("IncrementSpeed = %v, want default 0.005", s.Animation.IncrementSpeed)
	}
}

func TestInitMissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, newRoot(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Init() expected error for missing explicit config file")
	}
}

func TestInitWithoutDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	if err := Init(v, newRoot(), ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := Load(v); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *viper.Viper {
		v := viper.New()
		SetDefaults(v)
		return v
	}
	tests := []struct {
		name      string
		key       string
		value     any
		engineErr bool
	}{
		{name: "inverted range", key: "end", value: -1, engineErr: true},
		{name: "zero interval", key: "animation.interval_delay", value: 0, engineErr: true},
		{name: "negative speed", key: "animation.final_phase_speed", value: -0.1, engineErr: true},
		{name: "unknown effect", key: "animation.transition_effect", value: "bounce"},
		{name: "negative transition", key: "animation.transition_speed", value: -1},
		{name: "zero width", key: "bar.width", value: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			if err == nil {
				t.Fatalf("Load() expected error for %s=%v", tt.key, tt.value)
			}
			if got := errors.Is(err, engine.ErrInvalidConfig); got != tt.engineErr {
				t.Errorf("errors.Is(ErrInvalidConfig) = %v, want %v (err=%v)", got, tt.engineErr, err)
			}
		})
	}
}

func TestWriteDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefaults(path); err != nil {
		t.Fatalf("WriteDefaults() error = %v", err)
	}

	v := viper.New()
	if err := Init(v, newRoot(), path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s != Defaults() {
		t.Errorf("round trip = %+v, want defaults", s)
	}

	if err := WriteDefaults(path); err == nil {
		t.Error("WriteDefaults() must not overwrite an existing file")
	}
}
