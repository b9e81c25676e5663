package domain

import (
	"math"
	"time"
)

type ControllerState string

const (
	StateNeedsAuth ControllerState = "needs_auth"
	StateSynced    ControllerState = "synced"
	StateTapping   ControllerState = "tapping"
	StateUpgrading ControllerState = "upgrading"
	StateThrottled ControllerState = "throttled"
	StateBackoff   ControllerState = "backoff"
)

func (s ControllerState) Label() string {
	switch s {
	case StateNeedsAuth:
		return "needs auth"
	case StateSynced:
		return "synced"
	case StateTapping:
		return "tapping"
	case StateUpgrading:
		return "upgrading"
	case StateThrottled:
		return "waiting for energy"
	case StateBackoff:
		return "backoff"
	default:
		return string(s)
	}
}

// SessionState is owned by exactly one controller.
type SessionState struct {
	AuthToken      string
	WebViewPayload string
	LastSyncTime   time.Time
	Balance        float64
	AvailableTaps  int
	Upgrades       []Upgrade
	Snapshot       *ClickerUser
}

// NeedsAuth reports whether the last sync is old enough (or missing) to redo the handshake.
func (s SessionState) NeedsAuth(now time.Time, interval time.Duration) bool {
	if s.LastSyncTime.IsZero() || s.AuthToken == "" {
		return true
	}

	drift := math.Abs(now.Sub(s.LastSyncTime).Seconds())
	return drift >= interval.Seconds()
}

// AdoptSync refreshes local fields from an authoritative server snapshot.
func (s *SessionState) AdoptSync(user ClickerUser) {
	snapshot := user
	s.Snapshot = &snapshot
	s.Balance = user.BalanceCoins
	s.AvailableTaps = user.AvailableTaps
	s.LastSyncTime = user.LastSyncUpdate
}

// Intn matches math/rand's generator method.
type Intn interface {
	Intn(n int) int
}

// TapQuantity samples a tap count in [minTaps, maxTaps], clamped down to available taps.
func TapQuantity(rng Intn, minTaps, maxTaps, available int) int {
	taps := RandomBetween(rng, minTaps, maxTaps)
	if taps > available {
		taps = available
	}
	if taps < 0 {
		taps = 0
	}

	return taps
}

// RandomBetween returns a uniform integer in [low, high].
func RandomBetween(rng Intn, low, high int) int {
	if high <= low {
		return low
	}
	return low + rng.Intn(high-low+1)
}
