// Package supervisor runs the wrapper's control loop: one server child
// process per iteration, with update application before each spawn, the
// console pipe wired to the child's stdin, and exit-code interpretation
// deciding whether to loop or terminate.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/jppabloc/hytale-dashboard/internal/config"
	"github.com/jppabloc/hytale-dashboard/internal/console"
	"github.com/jppabloc/hytale-dashboard/internal/install"
	"github.com/jppabloc/hytale-dashboard/internal/launch"
	"github.com/jppabloc/hytale-dashboard/internal/logging"
	"github.com/jppabloc/hytale-dashboard/internal/update"
)

// Supervisor owns the server lifecycle for one wrapper invocation.
type Supervisor struct {
	// Layout resolves the install paths
	Layout install.Layout

	// Config is the loaded wrapper configuration, read-only after load
	Config *config.Config

	// Channel is the console command channel
	Channel *console.Channel

	// Passthrough are trailing wrapper arguments handed to the server
	Passthrough []string

	// CrashWindow bounds the post-update crash heuristic
	CrashWindow time.Duration

	// Log is the component logger
	Log zerolog.Logger

	applier     *update.Applier
	childStdout io.Writer
	childStderr io.Writer
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithPassthrough sets the trailing arguments handed to the server verbatim.
func WithPassthrough(args []string) Option {
	return func(s *Supervisor) {
		s.Passthrough = args
	}
}

// WithCrashWindow sets the post-update crash detection window.
func WithCrashWindow(d time.Duration) Option {
	return func(s *Supervisor) {
		s.CrashWindow = d
	}
}

// WithChildOutput redirects the server's stdout and stderr.
func WithChildOutput(stdout, stderr io.Writer) Option {
	return func(s *Supervisor) {
		s.childStdout = stdout
		s.childStderr = stderr
	}
}

// New creates a Supervisor for the given install and configuration.
// The logger is the root logger; the supervisor and the update applier
// each log under their own component marker.
func New(cfg *config.Config, layout install.Layout, logger zerolog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		Layout:      layout,
		Config:      cfg,
		Channel:     console.New(layout.PipePath(), console.WithMode(install.PipeMode)),
		CrashWindow: DefaultCrashWindow,
		Log:         logging.Component(logger, "wrapper"),
		applier:     update.NewApplier(layout, logging.Component(logger, "updater")),
		childStdout: os.Stdout,
		childStderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Applier exposes the update applier sharing this supervisor's layout.
func (s *Supervisor) Applier() *update.Applier {
	return s.applier
}

// Run executes the supervisor loop until the server exits with a
// non-restart code or ctx is cancelled. It returns the exit code to
// surface as the wrapper's own. Failures before a spawn are fatal and
// returned as errors; after cancellation the child is killed and
// ctx.Err() is returned. The console pipe is removed on every exit path.
func (s *Supervisor) Run(ctx context.Context) (int, error) {
	if err := s.Channel.Create(); err != nil {
		return 0, fmt.Errorf("creating console pipe: %w", err)
	}
	defer func() {
		if err := s.Channel.Destroy(); err != nil {
			s.Log.Warn().Err(err).Msg("removing console pipe")
		}
	}()

	for {
		s.enter(StateIdle)

		s.enter(StateUpdating)
		applied, err := s.applier.Apply()
		if err != nil {
			return 0, fmt.Errorf("applying update: %w", err)
		}

		res, err := s.runServer(ctx, applied)
		if err != nil {
			return 0, err
		}

		s.enter(StateExited)
		status := exitStatus(res.Code, res.Elapsed)

		if status.Outcome == OutcomeRestartForUpdate {
			s.enter(StateRestarting)
			s.Log.Info().Dur("uptime", status.Elapsed).
				Msg("server requested restart for update")
			continue
		}

		s.enter(StateClassifying)
		if SuspectBadUpdate(res, s.CrashWindow) {
			s.Log.Warn().
				Int("exit_code", res.Code).
				Dur("uptime", res.Elapsed).
				Str("previous", s.Layout.PreviousJarPath()).
				Msg("server crashed shortly after an update; the update is the likely cause, previous binary is preserved")
		}

		s.enter(StateTerminating)
		s.Log.Info().Int("exit_code", status.Code).Msg("server stopped, wrapper exiting")
		return status.Code, nil
	}
}

// runServer performs the SPAWNING and RUNNING phases for one iteration:
// it opens the console read session, starts the server in its install
// directory, and blocks until it exits or ctx is cancelled.
func (s *Supervisor) runServer(ctx context.Context, applied bool) (IterationResult, error) {
	s.enter(StateSpawning)

	stdin, err := s.Channel.Open()
	if err != nil {
		return IterationResult{}, fmt.Errorf("opening console pipe: %w", err)
	}
	defer func() { _ = stdin.Close() }()

	inv := launch.Build(s.Layout, s.Config, s.Passthrough)

	cmd := exec.Command(inv.Bin, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = stdin
	cmd.Stdout = s.childStdout
	cmd.Stderr = s.childStderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return IterationResult{}, fmt.Errorf("starting server: %w", err)
	}

	s.enter(StateRunning)
	s.Log.Info().
		Int("pid", cmd.Process.Pid).
		Str("bin", inv.Bin).
		Strs("args", inv.Args).
		Bool("update_applied", applied).
		Msg("server started")

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		// Shutdown is immediate: best-effort kill, no console drain.
		_ = cmd.Process.Kill()
		<-done
		return IterationResult{}, ctx.Err()

	case err := <-done:
		code, werr := exitCode(err)
		if werr != nil {
			return IterationResult{}, fmt.Errorf("waiting for server: %w", werr)
		}
		return IterationResult{
			Code:          code,
			Elapsed:       time.Since(start),
			UpdateApplied: applied,
		}, nil
	}
}

// exitCode maps a Wait error to the child's exit code. Errors that are
// not exit statuses (I/O failures during wait) are passed through.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

func (s *Supervisor) enter(st State) {
	s.Log.Debug().Stringer("state", st).Msg("state transition")
}
