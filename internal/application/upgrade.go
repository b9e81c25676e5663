package application

import (
	"context"
	"fmt"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
)

// findAndUpgrade buys upgrades greedily by ROI while the balance allows.
//
// The walk runs over the ranking taken when it started. A successful purchase refreshes
// c.state.Upgrades but the current walk keeps going over the old ranking. The new list is
// only used from the next iteration.
func (c *Controller) findAndUpgrade(ctx context.Context) error {
	if len(c.state.Upgrades) == 0 {
		catalog, err := c.game.UpgradesForBuy(ctx)
		if err != nil {
			return fmt.Errorf("list upgrades: %w", err)
		}
		c.state.Upgrades = domain.RankUpgrades(catalog)
	}

	ranked := c.state.Upgrades
	for _, upgrade := range ranked {
		if c.state.Balance < upgrade.Price {
			if c.settings.SleepForProfitable {
				c.logger.Info("not enough balance to buy the most profitable upgrade",
					"balance", c.state.Balance,
					"upgrade_id", upgrade.ID,
					"price", upgrade.Price,
					"profit_delta", upgrade.ProfitPerHourDelta,
				)
				return nil
			}
			continue
		}

		if err := c.buy(ctx, upgrade); err != nil {
			return err
		}
	}

	return nil
}

func (c *Controller) buy(ctx context.Context, upgrade domain.Upgrade) error {
	c.logger.Info("waiting before upgrade", "upgrade_id", upgrade.ID, "delay", c.settings.UpgradeDelay.String())
	if err := c.sleeper.Sleep(ctx, c.settings.UpgradeDelay); err != nil {
		return err
	}

	c.logger.Info("buying upgrade",
		"upgrade_id", upgrade.ID,
		"balance", c.state.Balance,
		"price", upgrade.Price,
		"profit_delta", upgrade.ProfitPerHourDelta,
	)
	result, err := c.game.BuyUpgrade(ctx, upgrade.ID)
	if err != nil {
		return fmt.Errorf("buy upgrade %s: %w", upgrade.ID, err)
	}

	if !result.Succeeded() {
		c.logger.Info("failed to buy upgrade", "upgrade_id", upgrade.ID, "response", result.Raw)
		if result.Upgrades != nil {
			c.state.Upgrades = domain.RankUpgrades(result.Upgrades)
		}
		return nil
	}

	spent := c.state.Balance - result.User.BalanceCoins
	c.state.Balance = result.User.BalanceCoins
	// nil leaves the cache empty so the next walk refetches the catalog
	c.state.Upgrades = domain.RankUpgrades(result.Upgrades)

	c.updateStats(func(s *Stats) {
		s.UpgradesBought++
		s.CoinsSpent += spent
		s.Balance = result.User.BalanceCoins
		if result.User.EarnPassivePerHour > 0 {
			s.EarnPassivePerHour = result.User.EarnPassivePerHour
		}
	})
	c.logger.Info("upgraded",
		"upgrade_id", upgrade.ID,
		"balance", c.state.Balance,
		"profit_delta", upgrade.ProfitPerHourDelta,
	)

	return nil
}
