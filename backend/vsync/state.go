package vsync

// State is the enablement state of a display.
type State int8

// Display states. Enabling is only ever observable from within EnableVsync.
const (
	Disabled State = iota
	Enabling
	Enabled
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabling:
		return "enabling"
	case Enabled:
		return "enabled"
	}
	return "unknown"
}
