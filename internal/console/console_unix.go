//go:build linux || darwin

package console

import (
	"context"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Create makes the named pipe if it does not already exist. An existing
// pipe is reused as-is so writers that already have it open are not
// disturbed; an existing non-pipe file at the path is an error.
func (c *Channel) Create() error {
	info, err := os.Stat(c.Path)
	if err == nil {
		if info.Mode()&os.ModeNamedPipe == 0 {
			return &OpError{Op: OpCreate, Path: c.Path, Err: ErrNotPipe}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return &OpError{Op: OpCreate, Path: c.Path, Err: err}
	}

	if err := unix.Mkfifo(c.Path, uint32(c.Mode)); err != nil {
		return &OpError{Op: OpCreate, Path: c.Path, Err: err}
	}

	// Mkfifo is subject to the umask; fix the mode up explicitly so group
	// writers (the dashboard) can reach the console.
	if err := os.Chmod(c.Path, c.Mode); err != nil {
		return &OpError{Op: OpCreate, Path: c.Path, Err: err}
	}

	return nil
}

// Open returns the long-lived read session that is wired to the server's
// stdin. The pipe is opened read-write: holding a write descriptor on our
// own pipe means the read side never sees EOF when an individual writer
// closes, so one session survives any number of writers. It also means
// Open never blocks waiting for a first writer; with no writers attached
// the server simply sees a quiet console.
func (c *Channel) Open() (*os.File, error) {
	f, err := os.OpenFile(c.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, &OpError{Op: OpOpen, Path: c.Path, Err: err}
	}
	return f, nil
}

// Send delivers one command line to the channel as an external writer
// would. The line is written in a single write so its bytes stay
// contiguous relative to other writers. When no reader is attached the
// open fails with ENXIO; Send retries with exponential backoff before
// giving up.
func (c *Channel) Send(ctx context.Context, line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	var lastErr error
	backoff := c.SendBackoffMin

	for attempt := 0; attempt < c.SendMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > c.SendBackoffMax {
				backoff = c.SendBackoffMax
			}
		}

		f, err := os.OpenFile(c.Path, os.O_WRONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			lastErr = err
			continue
		}

		_, err = f.WriteString(line)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return &OpError{Op: OpSend, Path: c.Path, Err: lastErr}
	}
	return &OpError{Op: OpSend, Path: c.Path, Err: ErrNotReady}
}

// Destroy removes the pipe. Missing pipes are not an error so Destroy is
// safe to run on every shutdown path.
func (c *Channel) Destroy() error {
	if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
		return &OpError{Op: OpDestroy, Path: c.Path, Err: err}
	}
	return nil
}
