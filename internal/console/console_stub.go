//go:build !(linux || darwin)

package console

import (
	"context"
	"os"
)

// Create is unavailable on platforms without named pipes.
func (c *Channel) Create() error {
	return &OpError{Op: OpCreate, Path: c.Path, Err: ErrUnsupported}
}

// Open is unavailable on platforms without named pipes.
func (c *Channel) Open() (*os.File, error) {
	return nil, &OpError{Op: OpOpen, Path: c.Path, Err: ErrUnsupported}
}

// Send is unavailable on platforms without named pipes.
func (c *Channel) Send(_ context.Context, _ string) error {
	return &OpError{Op: OpSend, Path: c.Path, Err: ErrUnsupported}
}

// Destroy is unavailable on platforms without named pipes.
func (c *Channel) Destroy() error {
	return &OpError{Op: OpDestroy, Path: c.Path, Err: ErrUnsupported}
}
