package theory

// State is the lifecycle state of a Calculator.
type State int

const (
	// StateUnconfigured - created, Setup not yet called
	StateUnconfigured State = iota
	// StateSystematicsBuilt - systematics table instantiated and partitioned
	StateSystematicsBuilt
	// StateSourcesBuilt - sources built, systematics attached and references validated
	StateSourcesBuilt
	// StateReady - pairs resolved; Run may be called
	StateReady
	// StateRunning - computing predictions for one parameter point
	StateRunning
	// StateFailed - Setup failed; the calculator cannot be used
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "Unconfigured"
	case StateSystematicsBuilt:
		return "SystematicsBuilt"
	case StateSourcesBuilt:
		return "SourcesBuilt"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
