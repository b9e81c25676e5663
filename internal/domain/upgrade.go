package domain

import "sort"

type Upgrade struct {
	ID                 string
	Name               string
	Price              float64
	ProfitPerHourDelta float64
	IsAvailable        bool
	IsExpired          bool
	CooldownSeconds    int
}

// IsCandidate reports whether the upgrade can be bought right now.
func (u Upgrade) IsCandidate() bool {
	return u.IsAvailable && !u.IsExpired && u.CooldownSeconds == 0 && u.Price > 0
}

// ROI is the hourly profit gained per coin spent.
func (u Upgrade) ROI() float64 {
	if u.Price <= 0 {
		return 0
	}
	return u.ProfitPerHourDelta / u.Price
}

// RankUpgrades filters purchasable upgrades and orders them by ROI, best first.
// Equal ratios keep their catalog order.
func RankUpgrades(upgrades []Upgrade) []Upgrade {
	ranked := make([]Upgrade, 0, len(upgrades))
	for _, upgrade := range upgrades {
		if upgrade.IsCandidate() {
			ranked = append(ranked, upgrade)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ROI() > ranked[j].ROI()
	})

	return ranked
}
