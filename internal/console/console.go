// Package console implements the persistent command channel used to
// deliver operator commands into the running server's console.
//
// The channel is a named pipe at the install root. The wrapper creates
// it once, holds a single read session open for the lifetime of each
// server process, and removes it on shutdown. Any process with write
// access can append a line, which reaches the server as if typed at its
// console. Writers may come and go freely without disturbing the read
// session.
package console

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Common errors returned by channel operations
var (
	// ErrNotPipe indicates the channel path exists but is not a named pipe
	ErrNotPipe = errors.New("console: path exists and is not a named pipe")

	// ErrNotReady indicates no reader is draining the pipe
	ErrNotReady = errors.New("console: pipe not accepting writes")

	// ErrUnsupported indicates named pipes are unavailable on this platform
	ErrUnsupported = errors.New("console: named pipes not supported on this platform")
)

// Op identifies a channel operation for error reporting.
type Op int

const (
	// OpCreate creates the pipe
	OpCreate Op = iota
	// OpOpen opens the long-lived read session
	OpOpen
	// OpSend writes a command line
	OpSend
	// OpDestroy removes the pipe
	OpDestroy
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpOpen:
		return "open"
	case OpSend:
		return "send"
	case OpDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// OpError represents a failed channel operation.
type OpError struct {
	// Op is the operation that failed
	Op Op
	// Path is the pipe path
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message.
func (e *OpError) Error() string {
	return fmt.Sprintf("console %s %q: %v", e.Op.String(), e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Channel is a command channel backed by a named pipe.
type Channel struct {
	// Path is the pipe location on disk
	Path string

	// Mode is the pipe's file mode, restricted to owner and group
	Mode os.FileMode

	// SendBackoffMin is the initial delay between send retries
	SendBackoffMin time.Duration

	// SendBackoffMax caps the delay between send retries
	SendBackoffMax time.Duration

	// SendMaxAttempts bounds send retries when no reader is attached
	SendMaxAttempts int
}

// Option configures a Channel.
type Option func(*Channel)

// WithMode sets the pipe's file mode.
func WithMode(mode os.FileMode) Option {
	return func(c *Channel) {
		c.Mode = mode
	}
}

// WithSendBackoff sets the minimum and maximum delay between send retries.
func WithSendBackoff(minBackoff, maxBackoff time.Duration) Option {
	return func(c *Channel) {
		c.SendBackoffMin = minBackoff
		c.SendBackoffMax = maxBackoff
	}
}

// WithSendMaxAttempts bounds the number of send attempts.
func WithSendMaxAttempts(n int) Option {
	return func(c *Channel) {
		c.SendMaxAttempts = n
	}
}

// New creates a Channel at the given path.
func New(path string, opts ...Option) *Channel {
	c := &Channel{
		Path:            path,
		Mode:            0o660,
		SendBackoffMin:  10 * time.Millisecond,
		SendBackoffMax:  time.Second,
		SendMaxAttempts: 10,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
