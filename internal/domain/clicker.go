package domain

import "time"

// ClickerUser mirrors the server-side account snapshot.
type ClickerUser struct {
	BalanceCoins       float64
	AvailableTaps      int
	MaxTaps            int
	TapsRecoverPerSec  float64
	LastSyncUpdate     time.Time
	LastPassiveEarn    float64
	EarnPassivePerHour float64
}

// RecoveryDuration is the time needed to refill energy from empty.
// ok is false when the snapshot carries no usable recovery rate.
func (u ClickerUser) RecoveryDuration() (time.Duration, bool) {
	if u.TapsRecoverPerSec <= 0 || u.MaxTaps <= 0 {
		return 0, false
	}

	seconds := float64(u.MaxTaps) / u.TapsRecoverPerSec
	return time.Duration(seconds * float64(time.Second)), true
}

// BuyResult is the outcome of a purchase call. User is nil when the purchase was refused.
// Upgrades is nil when the server did not return a refreshed catalog.
type BuyResult struct {
	User     *ClickerUser
	Upgrades []Upgrade
	Raw      string
}

func (r BuyResult) Succeeded() bool {
	return r.User != nil
}

type Task struct {
	ID          string
	IsCompleted bool
	RewardCoins float64
}

type TaskCheckResult struct {
	Task Task
	User *ClickerUser
}
