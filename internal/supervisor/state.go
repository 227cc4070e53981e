package supervisor

// State identifies a phase of the supervisor loop. States exist for
// logging and tests; the loop itself is ordinary control flow.
type State int

const (
	// StateIdle is the top of an iteration, before the update check
	StateIdle State = iota
	// StateUpdating runs the update applier
	StateUpdating
	// StateSpawning computes the invocation and starts the server
	StateSpawning
	// StateRunning blocks while the server is alive
	StateRunning
	// StateExited inspects the recorded exit
	StateExited
	// StateClassifying runs the post-mortem crash check
	StateClassifying
	// StateRestarting loops back for another iteration
	StateRestarting
	// StateTerminating ends the loop, surfacing the exit code
	StateTerminating
)

// State string constants
const (
	stateIdleStr        = "idle"
	stateUpdatingStr    = "updating"
	stateSpawningStr    = "spawning"
	stateRunningStr     = "running"
	stateExitedStr      = "exited"
	stateClassifyingStr = "classifying"
	stateRestartingStr  = "restarting"
	stateTerminatingStr = "terminating"
	stateUnknownStr     = "unknown"
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return stateIdleStr
	case StateUpdating:
		return stateUpdatingStr
	case StateSpawning:
		return stateSpawningStr
	case StateRunning:
		return stateRunningStr
	case StateExited:
		return stateExitedStr
	case StateClassifying:
		return stateClassifyingStr
	case StateRestarting:
		return stateRestartingStr
	case StateTerminating:
		return stateTerminatingStr
	default:
		return stateUnknownStr
	}
}
