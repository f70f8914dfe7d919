// Package throttle decides when a raw cutoff reported by the renderer is
// promoted to the committed (displayed) cutoff.
//
// It is a last-value throttle: the raw value is always recorded, a commit
// happens at most once per window while playing, and the latest raw value
// is always committed eventually (on the next event past the window, on
// Settle, or on a forced Flush).
package throttle

import (
	"time"

	"github.com/llehouerou/graphtime/internal/epoch"
)

// DefaultWindow is the minimum wall-clock interval between commits while playing.
const DefaultWindow = 300 * time.Millisecond

// State holds the raw and committed cutoffs and the time of the last commit.
type State struct {
	Raw        epoch.Cutoff
	Committed  epoch.Cutoff
	LastCommit time.Time
	// Pending is true when Raw differs from Committed and a commit was deferred.
	Pending bool
}

// Observe records a progress notification.
// An invalid raw cutoff leaves Raw untouched.
func Observe(s State, raw epoch.Cutoff, playing bool, now time.Time, window time.Duration) State {
	if raw.Valid {
		s.Raw = raw
	}
	if !s.Raw.Valid {
		return s
	}
	if !playing || s.LastCommit.IsZero() || now.Sub(s.LastCommit) >= window {
		return commit(s, now)
	}
	s.Pending = s.Raw != s.Committed
	return s
}

// Flush commits the raw cutoff regardless of the window.
func Flush(s State, now time.Time) State {
	if !s.Raw.Valid {
		s.Pending = false
		return s
	}
	return commit(s, now)
}

// Settle commits a deferred value once the window has elapsed.
func Settle(s State, now time.Time, window time.Duration) State {
	if !s.Pending || now.Sub(s.LastCommit) < window {
		return s
	}
	return commit(s, now)
}

// Due returns how long until a deferred value may be committed.
// Returns false when nothing is pending.
func Due(s State, now time.Time, window time.Duration) (time.Duration, bool) {
	if !s.Pending {
		return 0, false
	}
	return max(window-now.Sub(s.LastCommit), 0), true
}

func commit(s State, now time.Time) State {
	s.Committed = s.Raw
	s.LastCommit = now
	s.Pending = false
	return s
}
