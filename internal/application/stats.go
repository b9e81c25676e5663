package application

import (
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
)

// Stats is the in-memory run summary of one controller.
type Stats struct {
	Account            domain.Account
	State              domain.ControllerState
	Balance            float64
	AvailableTaps      int
	MaxTaps            int
	EarnPassivePerHour float64
	LastSync           time.Time

	Iterations     int
	TapsSent       int
	CoinsEarned    float64
	UpgradesBought int
	CoinsSpent     float64
	TasksCompleted int
	Errors         int
	LastError      string
}

func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

func (c *Controller) setState(state domain.ControllerState) {
	c.updateStats(func(s *Stats) { s.State = state })
}

func (c *Controller) recordIteration() {
	c.updateStats(func(s *Stats) { s.Iterations++ })
}

func (c *Controller) updateStats(apply func(*Stats)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	apply(&c.stats)
}
