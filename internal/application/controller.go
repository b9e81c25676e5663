package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
)

type ControllerDeps struct {
	Account   domain.Account
	Bot       domain.BotPeer
	Settings  domain.Settings
	Game      ports.GameAPI
	Messenger ports.Messenger
	// Hashes receives the bot access hash when the controller resolves it itself. Optional.
	Hashes    ports.AccessHashStore
	Clock     ports.Clock
	Sleeper   ports.Sleeper
	Rand      domain.Intn
	Logger    *slog.Logger
}

// Controller drives one account: authenticate, sync, tap, upgrade, pace, repeat.
// Its SessionState is touched only from the goroutine running Run.
type Controller struct {
	account   domain.Account
	bot       domain.BotPeer
	settings  domain.Settings
	game      ports.GameAPI
	messenger ports.Messenger
	hashes    ports.AccessHashStore
	clock     ports.Clock
	sleeper   ports.Sleeper
	rng       domain.Intn
	logger    *slog.Logger

	state domain.SessionState

	mu    sync.Mutex
	stats Stats
}

func NewController(deps ControllerDeps) *Controller {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Sleeper == nil {
		deps.Sleeper = ports.SystemClock{}
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Controller{
		account:   deps.Account,
		bot:       deps.Bot,
		settings:  deps.Settings,
		game:      deps.Game,
		messenger: deps.Messenger,
		hashes:    deps.Hashes,
		clock:     deps.Clock,
		sleeper:   deps.Sleeper,
		rng:       deps.Rand,
		logger: deps.Logger.With(
			"account", deps.Account.DisplayName(),
			"account_id", deps.Account.ID.String(),
		),
		stats: Stats{Account: deps.Account, State: domain.StateNeedsAuth},
	}
}

func (c *Controller) Account() domain.Account {
	return c.account
}

// Run loops until ctx is cancelled. Iteration failures are logged and never end the loop.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("starting clicker")

	return superviseForever(ctx, c.RunIteration, c.recordFailure)
}

// RunIteration performs one pass of the control loop.
func (c *Controller) RunIteration(ctx context.Context) error {
	c.recordIteration()

	if c.state.NeedsAuth(c.clock.Now(), c.settings.ReauthInterval) {
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		if c.settings.AutoTasks {
			if err := c.completeTasks(ctx); err != nil {
				c.logger.Warn("failed to complete tasks", "error", err)
			}
		}
	}

	available, err := c.tap(ctx)
	if err != nil {
		return err
	}

	if c.settings.AutoUpgrade {
		c.setState(domain.StateUpgrading)
		if err := c.findAndUpgrade(ctx); err != nil {
			return fmt.Errorf("upgrade: %w", err)
		}
	}

	if available < c.settings.MinEnergy {
		if recovery, ok := c.recoveryDuration(); ok {
			c.setState(domain.StateThrottled)
			c.logger.Info("minimum available taps reached",
				"available_taps", available,
				"sleep", recovery.String(),
			)
			return c.sleeper.Sleep(ctx, recovery)
		}
		c.logger.Warn("no recovery rate in last sync, using regular pacing", "available_taps", available)
	}

	pause := time.Duration(domain.RandomBetween(c.rng, c.settings.MinSleepTime, c.settings.MaxSleepTime)) * time.Second
	c.setState(domain.StateSynced)
	c.logger.Info("sleeping", "sleep", pause.String())
	return c.sleeper.Sleep(ctx, pause)
}

// Refresh runs the web view handshake and a full sync.
func (c *Controller) Refresh(ctx context.Context) error {
	c.setState(domain.StateNeedsAuth)

	if err := c.authenticate(ctx); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	user, err := c.game.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if user.LastSyncUpdate.IsZero() {
		user.LastSyncUpdate = c.clock.Now()
	}

	c.state.AdoptSync(user)
	c.setState(domain.StateSynced)
	c.updateStats(func(s *Stats) {
		s.Balance = user.BalanceCoins
		s.AvailableTaps = user.AvailableTaps
		s.MaxTaps = user.MaxTaps
		s.EarnPassivePerHour = user.EarnPassivePerHour
		s.LastSync = user.LastSyncUpdate
	})

	c.logger.Info("synced",
		"last_passive_earn", user.LastPassiveEarn,
		"earn_passive_per_hour", user.EarnPassivePerHour,
		"balance", user.BalanceCoins,
		"available_taps", user.AvailableTaps,
	)

	return nil
}

func (c *Controller) authenticate(ctx context.Context) error {
	if !c.bot.Resolved() {
		if err := c.resolveBot(ctx); err != nil {
			return err
		}
	}

	rawURL, err := c.messenger.RequestWebView(ctx, c.bot, domain.WebAppURL, domain.WebAppPlatform)
	if err != nil {
		return fmt.Errorf("request web view: %w", err)
	}

	payload, err := domain.ExtractWebAppData(rawURL)
	if err != nil {
		return err
	}
	c.state.WebViewPayload = payload

	token, err := c.game.AuthByWebApp(ctx, payload)
	if err != nil {
		return err
	}
	c.state.AuthToken = token

	return nil
}

// resolveBot retries the bot lookup for an account that started without an access hash.
func (c *Controller) resolveBot(ctx context.Context) error {
	peer, err := ResolveBotPeer(ctx, c.messenger)
	if err != nil {
		if errors.Is(err, domain.ErrAccessHashUnresolved) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrAccessHashUnresolved, err)
	}

	c.bot = peer
	if c.hashes != nil {
		c.hashes.PutIfAbsent(c.account.ID.String(), peer.AccessHash)
	}
	c.logger.Info("resolved game bot", "bot_id", peer.UserID)

	return nil
}

// tap spends a random number of taps and returns the server-reported energy.
func (c *Controller) tap(ctx context.Context) (int, error) {
	c.setState(domain.StateTapping)

	taps := domain.TapQuantity(c.rng, c.settings.MinTaps, c.settings.MaxTaps, c.state.AvailableTaps)
	user, err := c.game.Tap(ctx, c.state.AvailableTaps, taps)
	if err != nil {
		return 0, fmt.Errorf("tap: %w", err)
	}

	profit := user.BalanceCoins - c.state.Balance
	c.state.Balance = user.BalanceCoins
	c.state.AvailableTaps = user.AvailableTaps

	c.updateStats(func(s *Stats) {
		s.TapsSent += taps
		s.CoinsEarned += profit
		s.Balance = user.BalanceCoins
		s.AvailableTaps = user.AvailableTaps
	})
	c.logger.Info("tapped", "taps", taps, "profit", profit, "balance", c.state.Balance)

	return user.AvailableTaps, nil
}

func (c *Controller) recoveryDuration() (time.Duration, bool) {
	if c.state.Snapshot == nil {
		return 0, false
	}
	return c.state.Snapshot.RecoveryDuration()
}

func (c *Controller) recordFailure(ctx context.Context, err error) error {
	c.setState(domain.StateBackoff)
	c.updateStats(func(s *Stats) {
		s.Errors++
		s.LastError = err.Error()
	})

	if errors.Is(err, domain.ErrMissingAuthToken) {
		// a rejected handshake must not be mistaken for a live token
		c.state.AuthToken = ""
	}
	c.logger.Error("error while clicking", "error", err)

	return c.sleeper.Sleep(ctx, max(c.settings.ErrorBackoff, domain.MinErrorBackoff))
}

// State returns a copy of the session state. Callers must not race with Run.
func (c *Controller) State() domain.SessionState {
	state := c.state
	state.Upgrades = append([]domain.Upgrade(nil), c.state.Upgrades...)
	return state
}
