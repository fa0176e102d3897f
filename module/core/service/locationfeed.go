package service

import (
	"sync"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

// LocationFeed holds the latest known position from the device's fix
// stream. It has exactly one writer (the telemetry subscriber); everyone
// else reads snapshots. Reads never block on fix acquisition: until the
// source produces a fix, Snapshot reports no position.
type LocationFeed struct {
	mu     sync.RWMutex
	latest *domain.Position
	srcErr error
}

func NewLocationFeed() *LocationFeed {
	return &LocationFeed{}
}

// Update records a new fix. Last write wins; a successful fix clears any
// previously reported source error.
func (f *LocationFeed) Update(p domain.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = &p
	f.srcErr = nil
}

// Fail records a source failure (permission denied, timeout). The last
// known fix, if any, is kept.
func (f *LocationFeed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.srcErr = err
}

// Snapshot returns a copy of the latest fix (nil if none yet) and the most
// recent source error since the last successful fix.
func (f *LocationFeed) Snapshot() (*domain.Position, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.latest == nil {
		return nil, f.srcErr
	}
	p := *f.latest
	return &p, f.srcErr
}
