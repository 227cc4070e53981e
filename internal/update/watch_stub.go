//go:build !(linux || darwin)

package update

import "context"

// WatchStaging is unavailable on platforms without inotify or kqueue.
func (a *Applier) WatchStaging(_ context.Context) (<-chan struct{}, func() error, error) {
	return nil, nil, ErrUnsupported
}
