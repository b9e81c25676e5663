package gameapi

import (
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
)

type authRequest struct {
	InitDataRaw string   `json:"initDataRaw"`
	Fingerprint struct{} `json:"fingerprint"`
}

type authResponse struct {
	AuthToken string `json:"authToken"`
}

type timestampRequest struct {
	Timestamp int64 `json:"timestamp"`
}

type tapRequest struct {
	Count         int   `json:"count"`
	AvailableTaps int   `json:"availableTaps"`
	Timestamp     int64 `json:"timestamp"`
}

type buyUpgradeRequest struct {
	UpgradeID string `json:"upgradeId"`
	Timestamp int64  `json:"timestamp"`
}

type checkTaskRequest struct {
	TaskID string `json:"taskId"`
}

type clickerUserSchema struct {
	BalanceCoins       float64 `json:"balanceCoins"`
	AvailableTaps      int     `json:"availableTaps"`
	MaxTaps            int     `json:"maxTaps"`
	TapsRecoverPerSec  float64 `json:"tapsRecoverPerSec"`
	LastSyncUpdate     int64   `json:"lastSyncUpdate"`
	LastPassiveEarn    float64 `json:"lastPassiveEarn"`
	EarnPassivePerHour float64 `json:"earnPassivePerHour"`
}

// clickerEnvelope covers both response shapes: {"clickerUser": ...} and {"found": {"clickerUser": ...}}.
type clickerEnvelope struct {
	Found *struct {
		ClickerUser *clickerUserSchema `json:"clickerUser"`
	} `json:"found"`
	ClickerUser    *clickerUserSchema `json:"clickerUser"`
	UpgradesForBuy []upgradeSchema    `json:"upgradesForBuy"`
	Task           *taskSchema        `json:"task"`
	ErrorCode      string             `json:"error_code"`
	ErrorMessage   string             `json:"error_message"`
}

func (e clickerEnvelope) user() *clickerUserSchema {
	if e.Found != nil && e.Found.ClickerUser != nil {
		return e.Found.ClickerUser
	}
	return e.ClickerUser
}

type upgradesResponse struct {
	UpgradesForBuy []upgradeSchema `json:"upgradesForBuy"`
}

type upgradeSchema struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	ProfitPerHourDelta float64 `json:"profitPerHourDelta"`
	IsAvailable        bool    `json:"isAvailable"`
	IsExpired          bool    `json:"isExpired"`
	CooldownSeconds    int     `json:"cooldownSeconds"`
}

type tasksResponse struct {
	Tasks []taskSchema `json:"tasks"`
}

type taskSchema struct {
	ID          string  `json:"id"`
	IsCompleted bool    `json:"isCompleted"`
	RewardCoins float64 `json:"rewardCoins"`
}

func (s clickerUserSchema) toDomain() domain.ClickerUser {
	user := domain.ClickerUser{
		BalanceCoins:       s.BalanceCoins,
		AvailableTaps:      s.AvailableTaps,
		MaxTaps:            s.MaxTaps,
		TapsRecoverPerSec:  s.TapsRecoverPerSec,
		LastPassiveEarn:    s.LastPassiveEarn,
		EarnPassivePerHour: s.EarnPassivePerHour,
	}
	if s.LastSyncUpdate > 0 {
		user.LastSyncUpdate = time.Unix(s.LastSyncUpdate, 0)
	}
	return user
}

func (s upgradeSchema) toDomain() domain.Upgrade {
	return domain.Upgrade{
		ID:                 s.ID,
		Name:               s.Name,
		Price:              s.Price,
		ProfitPerHourDelta: s.ProfitPerHourDelta,
		IsAvailable:        s.IsAvailable,
		IsExpired:          s.IsExpired,
		CooldownSeconds:    s.CooldownSeconds,
	}
}

func (s taskSchema) toDomain() domain.Task {
	return domain.Task{ID: s.ID, IsCompleted: s.IsCompleted, RewardCoins: s.RewardCoins}
}

// upgradesToDomain keeps nil for an absent list so callers can tell it from an empty one.
func upgradesToDomain(upgrades []upgradeSchema) []domain.Upgrade {
	if upgrades == nil {
		return nil
	}
	out := make([]domain.Upgrade, 0, len(upgrades))
	for _, upgrade := range upgrades {
		out = append(out, upgrade.toDomain())
	}
	return out
}

func truncate(data []byte) string {
	const limit = 512
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
