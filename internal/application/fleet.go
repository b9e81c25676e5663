package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
	"golang.org/x/sync/errgroup"
)

// GameAPIFactory builds the game client bound to one account. proxyURL may be empty.
type GameAPIFactory func(account domain.Account, proxyURL string) (ports.GameAPI, error)

type FleetDeps struct {
	Settings  domain.Settings
	Sessions  ports.SessionSource
	Profiles  ports.ProfileRepository
	Connector ports.Connector
	Hashes    ports.AccessHashStore
	NewGame   GameAPIFactory
	Clock     ports.Clock
	Sleeper   ports.Sleeper
	Rand      func() domain.Intn
	Logger    *slog.Logger
	// Closers are released on shutdown after every messenger is closed.
	Closers []io.Closer
}

// Fleet owns every account connection and the controllers driving them.
type Fleet struct {
	deps   FleetDeps
	logger *slog.Logger

	messengers  []ports.Messenger
	controllers []*Controller

	shutdownOnce sync.Once
	shutdownErr  error
}

func NewFleet(deps FleetDeps) *Fleet {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Sleeper == nil {
		deps.Sleeper = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Fleet{deps: deps, logger: deps.Logger}
}

// Prepare opens a connection per discovered session and builds its controller.
// Sessions that cannot be opened are logged and skipped.
func (f *Fleet) Prepare(ctx context.Context) error {
	sessions, err := f.deps.Sessions.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover sessions: %w", err)
	}

	for _, session := range sessions {
		controller, err := f.prepareSession(ctx, session)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn("skipping session", "session", session.Name, "error", err)
			continue
		}
		if controller == nil {
			continue
		}
		f.controllers = append(f.controllers, controller)
	}

	if len(f.controllers) == 0 {
		return domain.ErrNoSessions
	}

	f.logger.Info("fleet ready", "accounts", len(f.controllers))
	return nil
}

func (f *Fleet) prepareSession(ctx context.Context, session domain.SessionFile) (*Controller, error) {
	profile, err := f.profile(ctx, session.Name)
	if err != nil {
		return nil, err
	}
	if profile.Disabled {
		f.logger.Info("session disabled in profile", "session", session.Name)
		return nil, nil
	}

	messenger, err := f.deps.Connector.Connect(ctx, session, profile.Proxy)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	f.messengers = append(f.messengers, messenger)

	account, err := messenger.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("get self: %w", err)
	}
	account.Session = session.Name
	if profile.Name != "" {
		account.Alias = profile.Name
	}

	bot := f.botPeer(ctx, account, messenger)

	game, err := f.deps.NewGame(account, profile.Proxy)
	if err != nil {
		return nil, fmt.Errorf("build game client: %w", err)
	}

	var rng domain.Intn
	if f.deps.Rand != nil {
		rng = f.deps.Rand()
	}

	return NewController(ControllerDeps{
		Account:   account,
		Bot:       bot,
		Settings:  f.deps.Settings,
		Game:      game,
		Messenger: messenger,
		Hashes:    f.deps.Hashes,
		Clock:     f.deps.Clock,
		Sleeper:   f.deps.Sleeper,
		Rand:      rng,
		Logger:    f.logger,
	}), nil
}

func (f *Fleet) profile(ctx context.Context, session string) (domain.Profile, error) {
	if f.deps.Profiles == nil {
		return domain.Profile{Session: session}, nil
	}

	profile, err := f.deps.Profiles.GetBySession(ctx, session)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.Profile{Session: session}, nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// botPeer returns the cached access hash or resolves and caches it. An unresolved peer is
// not fatal: the controller keeps failing its handshake until a later run resolves it.
func (f *Fleet) botPeer(ctx context.Context, account domain.Account, messenger ports.Messenger) domain.BotPeer {
	key := account.ID.String()
	if hash, ok := f.deps.Hashes.Get(key); ok && hash != 0 {
		return domain.BotPeer{UserID: domain.BotID, AccessHash: hash}
	}

	peer, err := ResolveBotPeer(ctx, messenger)
	if err != nil {
		f.logger.Error("failed to get access hash", "account_id", key, "error", err)
		return domain.BotPeer{UserID: domain.BotID}
	}

	f.deps.Hashes.PutIfAbsent(key, peer.AccessHash)
	return peer
}

// Run prepares the fleet and drives every controller until ctx is cancelled.
// Connections are closed and the access-hash cache is persisted on every return path.
func (f *Fleet) Run(ctx context.Context) (err error) {
	defer func() {
		err = errors.Join(err, f.Shutdown(context.WithoutCancel(ctx)))
	}()

	if err := f.Prepare(ctx); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, controller := range f.controllers {
		group.Go(func() error {
			return controller.Run(groupCtx)
		})
	}

	err = group.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Snapshot authenticates and syncs every prepared account once, without tapping or buying.
func (f *Fleet) Snapshot(ctx context.Context) []Stats {
	var group errgroup.Group
	for _, controller := range f.controllers {
		group.Go(func() error {
			if err := controller.Refresh(ctx); err != nil {
				controller.updateStats(func(s *Stats) {
					s.Errors++
					s.LastError = err.Error()
				})
			}
			return nil
		})
	}
	_ = group.Wait()

	return f.Stats()
}

func (f *Fleet) Stats() []Stats {
	stats := make([]Stats, 0, len(f.controllers))
	for _, controller := range f.controllers {
		stats = append(stats, controller.Stats())
	}
	return stats
}

func (f *Fleet) Controllers() []*Controller {
	return f.controllers
}

// Shutdown closes every connection and persists the access-hash cache. Safe to call twice.
func (f *Fleet) Shutdown(ctx context.Context) error {
	f.shutdownOnce.Do(func() {
		var errs []error
		for _, messenger := range f.messengers {
			if err := messenger.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close messenger: %w", err))
			}
		}
		for _, closer := range f.deps.Closers {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close transport: %w", err))
			}
		}
		if err := f.deps.Hashes.Persist(ctx); err != nil {
			errs = append(errs, fmt.Errorf("persist access hashes: %w", err))
		}
		f.shutdownErr = errors.Join(errs...)
	})

	return f.shutdownErr
}
