package supervisor

import "time"

// RestartExitCode is the reserved exit code the server uses to request
// an update-and-restart cycle. It is a deliberate signal, not a failure,
// and is never surfaced to the wrapper's own caller.
const RestartExitCode = 8

// Outcome says what a server exit asks of the supervisor.
type Outcome int

const (
	// OutcomeStop ends the loop and surfaces the exit code
	OutcomeStop Outcome = iota
	// OutcomeRestartForUpdate loops back to the update check
	OutcomeRestartForUpdate
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == OutcomeRestartForUpdate {
		return "restart-for-update"
	}
	return "stop"
}

// ExitStatus is the tagged result of waiting for one server process.
// Branching on it keeps the restart sentinel out of inline comparisons.
type ExitStatus struct {
	// Outcome is what the exit asks of the supervisor
	Outcome Outcome

	// Code is the raw exit code
	Code int

	// Elapsed is wall time from spawn to exit
	Elapsed time.Duration
}

// exitStatus tags a recorded exit.
func exitStatus(code int, elapsed time.Duration) ExitStatus {
	st := ExitStatus{Code: code, Elapsed: elapsed}
	if code == RestartExitCode {
		st.Outcome = OutcomeRestartForUpdate
	}
	return st
}
