package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func upgradeSettings(sleepForProfitable bool) domain.Settings {
	settings := testSettings()
	settings.AutoUpgrade = true
	settings.SleepForProfitable = sleepForProfitable
	return settings
}

func candidate(id string, price, delta float64) domain.Upgrade {
	return domain.Upgrade{ID: id, Price: price, ProfitPerHourDelta: delta, IsAvailable: true}
}

func TestFindAndUpgradeFetchesAndRanksCatalogWhenCacheEmpty(t *testing.T) {
	f := newControllerFixture(t)
	controller := f.controller(upgradeSettings(true), 0)
	controller.state.Balance = 10

	f.game.On("UpgradesForBuy", mock.Anything).Return([]domain.Upgrade{
		candidate("A", 100, 20),
		candidate("B", 50, 15),
		{ID: "expired", Price: 1, ProfitPerHourDelta: 100, IsAvailable: true, IsExpired: true},
		{ID: "cooling", Price: 1, ProfitPerHourDelta: 100, IsAvailable: true, CooldownSeconds: 60},
		{ID: "locked", Price: 1, ProfitPerHourDelta: 100},
	}, nil).Once()

	require.NoError(t, controller.findAndUpgrade(context.Background()))

	ids := make([]string, 0, len(controller.state.Upgrades))
	for _, upgrade := range controller.state.Upgrades {
		ids = append(ids, upgrade.ID)
	}
	assert.Equal(t, []string{"B", "A"}, ids)
}

func TestFindAndUpgradeStopsAtFirstUnaffordableWhenSavingUp(t *testing.T) {
	f := newControllerFixture(t)
	controller := f.controller(upgradeSettings(true), 0)
	controller.state.Balance = 40
	controller.state.Upgrades = []domain.Upgrade{candidate("best", 50, 25), candidate("cheap", 10, 1)}

	require.NoError(t, controller.findAndUpgrade(context.Background()))

	f.game.AssertNotCalled(t, "BuyUpgrade", mock.Anything, mock.Anything)
	f.sleeper.AssertNotCalled(t, "Sleep", mock.Anything, mock.Anything)
	assert.Equal(t, 40.0, controller.state.Balance)
}

func TestFindAndUpgradeContinuesPastUnaffordableWhenNotSavingUp(t *testing.T) {
	f := newControllerFixture(t)
	controller := f.controller(upgradeSettings(false), 0)
	controller.state.Balance = 40
	controller.state.Upgrades = []domain.Upgrade{candidate("best", 50, 25), candidate("cheap", 10, 1)}

	f.sleeper.On("Sleep", mock.Anything, domain.DefaultUpgradeDelay).Return(nil).Once()
	f.game.On("BuyUpgrade", mock.Anything, "cheap").Return(domain.BuyResult{
		User:     &domain.ClickerUser{BalanceCoins: 30},
		Upgrades: []domain.Upgrade{candidate("best", 50, 25), candidate("cheap", 20, 2)},
	}, nil).Once()

	require.NoError(t, controller.findAndUpgrade(context.Background()))

	assert.Equal(t, 30.0, controller.state.Balance)
	stats := controller.Stats()
	assert.Equal(t, 1, stats.UpgradesBought)
	assert.InDelta(t, 10, stats.CoinsSpent, 1e-9)
}

func TestFindAndUpgradeWalksStaleRankingAfterPurchase(t *testing.T) {
	f := newControllerFixture(t)
	controller := f.controller(upgradeSettings(true), 0)
	controller.state.Balance = 100
	controller.state.Upgrades = []domain.Upgrade{candidate("A", 10, 5), candidate("B", 20, 8)}

	f.sleeper.On("Sleep", mock.Anything, domain.DefaultUpgradeDelay).Return(nil).Twice()
	f.game.On("BuyUpgrade", mock.Anything, "A").Return(domain.BuyResult{
		User:     &domain.ClickerUser{BalanceCoins: 90},
		Upgrades: []domain.Upgrade{candidate("C", 1000, 1)},
	}, nil).Once()
	f.game.On("BuyUpgrade", mock.Anything, "B").Return(domain.BuyResult{
		User:     &domain.ClickerUser{BalanceCoins: 70},
		Upgrades: []domain.Upgrade{candidate("D", 5, 1), candidate("E", 5, 4)},
	}, nil).Once()

	require.NoError(t, controller.findAndUpgrade(context.Background()))

	assert.Equal(t, 70.0, controller.state.Balance)
	require.Len(t, controller.state.Upgrades, 2)
	assert.Equal(t, "E", controller.state.Upgrades[0].ID)
	assert.Equal(t, "D", controller.state.Upgrades[1].ID)
}

func TestFindAndUpgradeEmptiesCacheWhenPurchaseReturnsNoCatalog(t *testing.T) {
	f := newControllerFixture(t)
	controller := f.controller(upgradeSettings(true), 0)
	controller.state.Balance = 100
	controller.state.Upgrades = []domain.Upgrade{candidate("A", 10, 5)}

	f.sleeper.On("Sleep", mock.Anything, domain.DefaultUpgradeDelay).Return(nil).Once()
	f.game.On("BuyUpgrade", mock.Anything, "A").Return(domain.BuyResult{
		User: &domain.ClickerUser{BalanceCoins: 90},
	}, nil).Once()

	require.NoError(t, controller.findAndUpgrade(context.Background()))
	assert.Empty(t, controller.state.Upgrades)
}

func TestFindAndUpgradeRefusedPurchaseKeepsBalance(t *testing.T) {
	f := newControllerFixture(t)
	controller := f.controller(upgradeSettings(true), 0)
	controller.state.Balance = 100
	controller.state.Upgrades = []domain.Upgrade{candidate("A", 10, 5)}

	f.sleeper.On("Sleep", mock.Anything, domain.DefaultUpgradeDelay).Return(nil).Once()
	f.game.On("BuyUpgrade", mock.Anything, "A").Return(domain.BuyResult{
		Raw: `{"error_code":"INSUFFICIENT_FUNDS"}`,
	}, nil).Once()

	require.NoError(t, controller.findAndUpgrade(context.Background()))

	assert.Equal(t, 100.0, controller.state.Balance)
	assert.Equal(t, 0, controller.Stats().UpgradesBought)
}

func TestFindAndUpgradeStopsWhenDelayIsInterrupted(t *testing.T) {
	f := newControllerFixture(t)
	settings := upgradeSettings(true)
	settings.UpgradeDelay = 2 * time.Second
	controller := f.controller(settings, 0)
	controller.state.Balance = 100
	controller.state.Upgrades = []domain.Upgrade{candidate("A", 10, 5)}

	f.sleeper.On("Sleep", mock.Anything, 2*time.Second).Return(context.Canceled).Once()

	err := controller.findAndUpgrade(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	f.game.AssertNotCalled(t, "BuyUpgrade", mock.Anything, mock.Anything)
}

func TestFindAndUpgradeWrapsCatalogFailure(t *testing.T) {
	f := newControllerFixture(t)
	controller := f.controller(upgradeSettings(true), 0)

	f.game.On("UpgradesForBuy", mock.Anything).Return(nil, domain.ErrMalformedResponse).Once()

	err := controller.findAndUpgrade(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
}
