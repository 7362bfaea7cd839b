package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"

	"fauxbar/internal/config"
)

const (
	defaultSpringFrequency = 18.0
	defaultTransition      = 0.3
)

// newBar builds the bar from the presentation settings. The second return
// value reports whether width changes are animated; "linear", "none" and a
// zero transition speed render each snapshot directly.
func newBar(bar config.Bar, anim config.Animation) (bubblesprogress.Model, bool) {
	opts := []bubblesprogress.Option{
		bubblesprogress.WithWidth(bar.Width),
		bubblesprogress.WithoutPercentage(),
	}
	if bar.Color != "" {
		opts = append(opts, bubblesprogress.WithSolidFill(bar.Color))
	} else {
		opts = append(opts, bubblesprogress.WithDefaultGradient())
	}

	freq, damping, animate := springFor(anim.TransitionEffect, anim.TransitionSpeed)
	if animate {
		opts = append(opts, bubblesprogress.WithSpringOptions(freq, damping))
	}
	return bubblesprogress.New(opts...), animate
}

// springFor maps a CSS-style transition onto spring parameters. A slower
// transition lowers the frequency; the effect picks the damping.
func springFor(effect string, speedSeconds float64) (frequency, damping float64, animate bool) {
	if speedSeconds <= 0 {
		return 0, 0, false
	}
	frequency = defaultSpringFrequency * defaultTransition / speedSeconds
	switch effect {
	case "linear", "none":
		return 0, 0, false
	case "ease-in":
		damping = 1.6
	case "ease-in-out":
		damping = 1.3
	default: // ease-out
		damping = 1.0
	}
	return frequency, damping, true
}
