package engine

// Phase selects the per-tick accumulator increment.
type Phase int

const (
	PhaseRamp Phase = iota
	PhaseAccelerate
	PhaseSettle
)

func (p Phase) String() string {
	switch p {
	case PhaseRamp:
		return "ramp"
	case PhaseAccelerate:
		return "accelerate"
	case PhaseSettle:
		return "settle"
	default:
		return "unknown"
	}
}

// Event names the transition that produced a Snapshot.
type Event string

const (
	EventActivate   Event = "activate"
	EventDeactivate Event = "deactivate"
	EventTick       Event = "tick"
	EventComplete   Event = "complete"
	EventReset      Event = "reset"
)

// Snapshot is the state emitted to observers after every transition.
type Snapshot struct {
	Event       Event
	Progress    float64
	Start       float64
	End         float64
	Ceiling     float64 // End once completed, else End*StopThreshold/100
	Accumulator float64
	Phase       Phase
	Running     bool
	Completed   bool
	// Stalled is set when the last tick was clamped at the ceiling.
	Stalled bool
}

// Width is the value a renderer should draw. The engine can report values
// above End when StopThreshold > 100; the clamp belongs here, not in Tick.
func (s Snapshot) Width() float64 {
	if s.Progress > s.End {
		return s.End
	}
	return s.Progress
}

// Fraction maps Width into [0,1] relative to the configured range.
func (s Snapshot) Fraction() float64 {
	span := s.End - s.Start
	if span <= 0 {
		return 0
	}
	f := (s.Width() - s.Start) / span
	if f < 0 {
		return 0
	}
	return f
}

// Percent is Fraction scaled to 0..100.
func (s Snapshot) Percent() float64 {
	return s.Fraction() * 100
}

// Observer receives snapshots. It is called with the engine lock held and
// must not call back into the Engine.
type Observer interface {
	Observe(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Observe(s Snapshot) { f(s) }
