package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fauxbar/internal/dirs"
	"fauxbar/internal/engine"
)

// Settings is everything fauxbar reads from flags, env and the config file.
type Settings struct {
	Start       float64   `mapstructure:"start"`
	End         float64   `mapstructure:"end"`
	Animation   Animation `mapstructure:"animation"`
	Bar         Bar       `mapstructure:"bar"`
	Log         Log       `mapstructure:"log"`
	NoUI        bool      `mapstructure:"no_ui"`
	MetricsAddr string    `mapstructure:"metrics_addr"`
}

// Animation mirrors the engine tuning plus the bar transition.
type Animation struct {
	TransitionSpeed    float64 `mapstructure:"transition_speed"` // seconds
	TransitionEffect   string  `mapstructure:"transition_effect"`
	StopThreshold      float64 `mapstructure:"stop_threshold"`
	IntervalDelay      int     `mapstructure:"interval_delay"` // milliseconds between ticks
	IncrementSpeed     float64 `mapstructure:"increment_speed"`
	MiddlePhaseSpeed   float64 `mapstructure:"middle_phase_speed"`
	FinalPhaseSpeed    float64 `mapstructure:"final_phase_speed"`
	FirstPhaseDuration float64 `mapstructure:"first_phase_duration"`
	LastPhaseDuration  float64 `mapstructure:"last_phase_duration"`
}

// Bar holds terminal presentation knobs.
type Bar struct {
	Color string `mapstructure:"color"` // empty means the default gradient
	Width int    `mapstructure:"width"`
	Title string `mapstructure:"title"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// TransitionEffects lists the accepted transition_effect values.
var TransitionEffects = []string{"ease-out", "ease-in", "ease-in-out", "linear", "none"}

// FlagKeys maps persistent flag names to viper keys.
var FlagKeys = map[string]string{
	"start":             "start",
	"end":               "end",
	"stop-threshold":    "animation.stop_threshold",
	"interval":          "animation.interval_delay",
	"increment-speed":   "animation.increment_speed",
	"middle-speed":      "animation.middle_phase_speed",
	"final-speed":       "animation.final_phase_speed",
	"first-phase":       "animation.first_phase_duration",
	"last-phase":        "animation.last_phase_duration",
	"transition-speed":  "animation.transition_speed",
	"transition-effect": "animation.transition_effect",
	"color":             "bar.color",
	"width":             "bar.width",
	"title":             "bar.title",
	"log-level":         "log.level",
	"log-dev":           "log.development",
	"no-ui":             "no_ui",
	"metrics-addr":      "metrics_addr",
}

// Init wires v with the config file, FAUXBAR_* environment variables and the
// root persistent flags. A missing default config file is not an error; a
// missing explicit one is.
func Init(v *viper.Viper, root *cobra.Command, configFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix("FAUXBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range FlagKeys {
		if f := root.PersistentFlags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %q: %w", name, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
		return nil
	}

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// SetDefaults registers the stock values, matching engine.DefaultConfig.
func SetDefaults(v *viper.Viper) {
	d := engine.DefaultConfig()
	v.SetDefault("start", d.Start)
	v.SetDefault("end", d.End)
	v.SetDefault("animation.transition_speed", 0.3)
	v.SetDefault("animation.transition_effect", "ease-out")
	v.SetDefault("animation.stop_threshold", d.StopThreshold)
	v.SetDefault("animation.interval_delay", int(d.TickInterval/time.Millisecond))
	v.SetDefault("animation.increment_speed", d.IncrementSpeed)
	v.SetDefault("animation.middle_phase_speed", d.MiddlePhaseSpeed)
	v.SetDefault("animation.final_phase_speed", d.FinalPhaseSpeed)
	v.SetDefault("animation.first_phase_duration", d.FirstPhaseDuration)
	v.SetDefault("animation.last_phase_duration", d.LastPhaseDuration)
	v.SetDefault("bar.color", "")
	v.SetDefault("bar.width", 40)
	v.SetDefault("bar.title", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
	v.SetDefault("no_ui", false)
	v.SetDefault("metrics_addr", "")
}

// Defaults returns the settings SetDefaults registers, without viper.
func Defaults() Settings {
	d := engine.DefaultConfig()
	return Settings{
		Start: d.Start,
		End:   d.End,
		Animation: Animation{
			TransitionSpeed:    0.3,
			TransitionEffect:   "ease-out",
			StopThreshold:      d.StopThreshold,
			IntervalDelay:      int(d.TickInterval / time.Millisecond),
			IncrementSpeed:     d.IncrementSpeed,
			MiddlePhaseSpeed:   d.MiddlePhaseSpeed,
			FinalPhaseSpeed:    d.FinalPhaseSpeed,
			FirstPhaseDuration: d.FirstPhaseDuration,
			LastPhaseDuration:  d.LastPhaseDuration,
		},
		Bar: Bar{Width: 40},
		Log: Log{Level: "warn"},
	}
}

// WriteDefaults writes the stock settings to path, creating its directory.
// An existing file is never overwritten.
func WriteDefaults(path string) error {
	if err := dirs.Ensure(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	v := viper.New()
	SetDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Engine converts the settings into an engine configuration.
func (s Settings) Engine() engine.Config {
	return engine.Config{
		Start:              s.Start,
		End:                s.End,
		IncrementSpeed:     s.Animation.IncrementSpeed,
		MiddlePhaseSpeed:   s.Animation.MiddlePhaseSpeed,
		FinalPhaseSpeed:    s.Animation.FinalPhaseSpeed,
		FirstPhaseDuration: s.Animation.FirstPhaseDuration,
		LastPhaseDuration:  s.Animation.LastPhaseDuration,
		StopThreshold:      s.Animation.StopThreshold,
		TickInterval:       time.Duration(s.Animation.IntervalDelay) * time.Millisecond,
	}
}

// Validate enforces the engine contract and the presentation limits.
func (s Settings) Validate() error {
	if err := s.Engine().Validate(); err != nil {
		return err
	}
	if s.Animation.TransitionSpeed < 0 {
		return fmt.Errorf("animation.transition_speed must be >= 0")
	}
	if !validEffect(s.Animation.TransitionEffect) {
		return fmt.Errorf("invalid animation.transition_effect: %q (valid: %s)",
			s.Animation.TransitionEffect, strings.Join(TransitionEffects, "|"))
	}
	if s.Bar.Width <= 0 {
		return fmt.Errorf("bar.width must be > 0")
	}
	return nil
}

func validEffect(e string) bool {
	for _, v := range TransitionEffects {
		if e == v {
			return true
		}
	}
	return false
}
