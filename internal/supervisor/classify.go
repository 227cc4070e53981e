package supervisor

import "time"

// DefaultCrashWindow is how soon after spawn a non-zero exit is
// considered suspicious when an update was applied the same iteration.
// A server that survives past this ran long enough that the update is
// unlikely to be the cause.
const DefaultCrashWindow = 30 * time.Second

// IterationResult records what one supervisor iteration observed. It
// feeds the crash classifier and is not persisted anywhere.
type IterationResult struct {
	// Code is the server's exit code
	Code int

	// Elapsed is wall time from spawn to exit
	Elapsed time.Duration

	// UpdateApplied is whether this iteration promoted a staged update
	UpdateApplied bool
}

// SuspectBadUpdate reports whether a crash looks caused by the update
// applied this iteration: non-zero exit, update applied, and the server
// died inside the crash window. The check is purely advisory; it changes
// the diagnostic emitted, never the loop's behavior.
func SuspectBadUpdate(res IterationResult, window time.Duration) bool {
	return res.Code != 0 && res.UpdateApplied && res.Elapsed < window
}
