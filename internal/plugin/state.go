package plugin

// State represents the lifecycle state of a plugin.
type State int

// Plugin states.
const (
	// StateUnloaded - Plugin has not been bootstrapped.
	StateUnloaded State = iota

	// StateBound - Plugin hooks are registered, plugins_loaded has not fired.
	StateBound

	// StateActive - Text domain is loaded and the plugin is running.
	StateActive

	// StateError - Binding the plugin's hooks failed.
	StateError
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateBound:
		return "bound"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
