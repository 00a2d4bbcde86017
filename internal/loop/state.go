package loop

// State is the frame loop's phase.
type State int

const (
	StateRunning State = iota // Iterating frames
	StateStopped              // Quit observed; terminal
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}
