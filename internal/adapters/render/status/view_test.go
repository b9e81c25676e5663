package status

import (
	"testing"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/application"
	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSingleAccount(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render([]application.Stats{
		{
			Account:            domain.Account{ID: 42, FirstName: "Ada", Username: "ada"},
			State:              domain.StateSynced,
			Balance:            1234567.8,
			AvailableTaps:      750,
			MaxTaps:            1000,
			EarnPassivePerHour: 3600,
			LastSync:           now.Add(-15 * time.Minute),
		},
	}, RenderOptions{Now: now, StaleAfter: time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "Hamster Kombat Fleet")
	assert.Contains(t, output, "accounts: 1")
	assert.Contains(t, output, "Ada @ada (42)")
	assert.Contains(t, output, "[synced]")
	assert.Contains(t, output, "balance: 1,234,567")
	assert.Contains(t, output, "passive: 3,600/h")
	assert.Contains(t, output, "750/1000")
	assert.Contains(t, output, "synced 15 minutes ago")
	assert.Contains(t, output, "[==================------]")
	assert.NotContains(t, output, "[stale]")
	assert.NotContains(t, output, "iterations:")
}

func TestRenderMultiAccountTotalsBalance(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render([]application.Stats{
		{Account: domain.Account{ID: 1, Alias: "Main"}, Balance: 1500, MaxTaps: 100, AvailableTaps: 100, LastSync: now},
		{Account: domain.Account{ID: 2, Alias: "Backup"}, Balance: 500, State: domain.StateThrottled, LastSync: now.Add(-3 * time.Hour)},
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "accounts: 2  balance: 2,000")
	assert.Contains(t, output, "Main (1)")
	assert.Contains(t, output, "Backup (2)")
	assert.Contains(t, output, "[waiting for energy]")
	assert.Contains(t, output, "[idle]")
	assert.Contains(t, output, "energy: n/a")
}

func TestRenderMarksStaleSync(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render([]application.Stats{
		{Account: domain.Account{ID: 1}, MaxTaps: 100, AvailableTaps: 20, LastSync: now.Add(-2 * time.Hour)},
	}, RenderOptions{Now: now, StaleAfter: time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "synced 2 hours ago (09:00)")
	assert.Contains(t, output, "[stale]")
}

func TestRenderDoesNotMarkStaleWhenNowNotProvided(t *testing.T) {
	output, err := Render([]application.Stats{
		{
			Account:       domain.Account{ID: 1},
			MaxTaps:       100,
			AvailableTaps: 20,
			LastSync:      time.Date(2026, 2, 10, 11, 0, 0, 0, time.UTC),
		},
	}, RenderOptions{StaleAfter: time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "synced 2026-02-10T11:00:00Z")
	assert.NotContains(t, output, "[stale]")
}

func TestRenderSummaryIncludesCountersAndErrors(t *testing.T) {
	output, err := Render([]application.Stats{
		{
			Account:        domain.Account{ID: 7, Alias: "Farm"},
			State:          domain.StateBackoff,
			MaxTaps:        500,
			Iterations:     12,
			TapsSent:       900,
			CoinsEarned:    900,
			UpgradesBought: 2,
			CoinsSpent:     4500,
			TasksCompleted: 1,
			Errors:         3,
			LastError:      "sync: status 502",
		},
	}, RenderOptions{Title: "Run summary", Summary: true})

	require.NoError(t, err)
	assert.Contains(t, output, "Run summary")
	assert.Contains(t, output, "[backoff]")
	assert.Contains(t, output, "iterations: 12  taps: 900  earned: 900  upgrades: 2 (4,500)  tasks: 1")
	assert.Contains(t, output, "errors: 3 (last: sync: status 502)")
	assert.Contains(t, output, "never synced")
}

func TestRenderEmptyFleet(t *testing.T) {
	output, err := Render(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "accounts: 0")
	assert.Contains(t, output, "No accounts are running.")
}

func TestRenderHeaderCountsFailingAccounts(t *testing.T) {
	output, err := Render([]application.Stats{
		{Account: domain.Account{ID: 1}, Balance: 100, EarnPassivePerHour: 1200, Errors: 2},
		{Account: domain.Account{ID: 2}, Balance: 50, EarnPassivePerHour: 800},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "accounts: 2  balance: 150  passive: 2,000/h")
	assert.Contains(t, output, "failing: 1")
}

func TestNewModelSummarizesFleet(t *testing.T) {
	t.Parallel()

	m := newModel([]application.Stats{
		{Balance: 10.5, EarnPassivePerHour: 3, Errors: 1},
		{Balance: 20, EarnPassivePerHour: 4},
	}, RenderOptions{})

	assert.Equal(t, "Hamster Kombat Fleet", m.opts.Title)
	assert.Equal(t, fleetTotals{accounts: 2, balance: 30.5, passive: 7, failing: 1}, m.totals)
}

func TestStateBadgeFallsBackForUnknownStates(t *testing.T) {
	t.Parallel()

	s := newStyles()
	assert.Contains(t, s.stateBadge(""), "[idle]")
	assert.Contains(t, s.stateBadge(domain.StateNeedsAuth), "["+domain.StateNeedsAuth.Label()+"]")
	assert.Contains(t, s.stateBadge(domain.ControllerState("paused")), "[paused]")
}

func TestFormatCoins(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatCoins(0))
	assert.Equal(t, "999", formatCoins(999.9))
	assert.Equal(t, "1,000", formatCoins(1000))
	assert.Equal(t, "-12,345", formatCoins(-12345.6))
	assert.Equal(t, "0", formatCoins(-0.4))
}
