package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	hashcache "github.com/bnema/hamster-clicker-cli/internal/adapters/cache/json"
	"github.com/bnema/hamster-clicker-cli/internal/adapters/gameapi"
	statusadapter "github.com/bnema/hamster-clicker-cli/internal/adapters/render/status"
	tomlrepo "github.com/bnema/hamster-clicker-cli/internal/adapters/repo/toml"
	sessionfile "github.com/bnema/hamster-clicker-cli/internal/adapters/sessions/file"
	"github.com/bnema/hamster-clicker-cli/internal/adapters/telegram"
	"github.com/bnema/hamster-clicker-cli/internal/adapters/transport"
	"github.com/bnema/hamster-clicker-cli/internal/application"
	"github.com/bnema/hamster-clicker-cli/internal/config"
	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/logging"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type app struct {
	settings       domain.Settings
	logger         *slog.Logger
	service        *application.Service
	profiles       *tomlrepo.Repository
	sessions       *sessionfile.Source
	connector      *telegram.Connector
	statusRenderer func([]application.Stats, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

// appLoader wires the app once, after the persistent flags are parsed.
type appLoader struct {
	opts *globalOptions
	app  *app
}

func (l *appLoader) load(cmd *cobra.Command) (*app, error) {
	if l.app != nil {
		return l.app, nil
	}

	app, err := wireApp(*l.opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	l.app = app
	return app, nil
}

func newLogger(opts globalOptions, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(w, logging.Options{Level: opts.logLevel, Format: opts.logFormat})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return logger, nil
}

func wireApp(opts globalOptions, logOutput io.Writer) (*app, error) {
	logger, err := newLogger(opts, logOutput)
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(config.LoadOptions{Path: opts.configPath, EnvFile: opts.envFile})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logger = logger.With("run_id", uuid.NewString())

	repo, err := tomlrepo.NewRepository(settings.AccountsPath)
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}
	sessions := sessionfile.NewSource(settings.SessionsDir)

	return &app{
		settings:       settings,
		logger:         logger,
		service:        application.NewService(sessions, repo),
		profiles:       repo,
		sessions:       sessions,
		connector:      telegram.NewConnector(settings.APIID, settings.APIHash, logger),
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

// newFleet loads the access-hash cache and builds a fleet over every discovered session.
func (a *app) newFleet() (*application.Fleet, error) {
	hashes, err := hashcache.Load(a.settings.AccessHashesPath)
	if err != nil {
		return nil, err
	}

	pool := transport.NewPool(a.settings.RequestTimeout)

	return application.NewFleet(application.FleetDeps{
		Settings:  a.settings,
		Sessions:  a.sessions,
		Profiles:  a.profiles,
		Connector: a.connector,
		Hashes:    hashes,
		NewGame:   a.gameFactory(pool),
		Rand:      newRand,
		Logger:    a.logger,
		Closers:   []io.Closer{pool},
	}), nil
}

func (a *app) gameFactory(pool *transport.Pool) application.GameAPIFactory {
	return func(account domain.Account, proxyURL string) (ports.GameAPI, error) {
		client, err := pool.Client(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("build http client: %w", err)
		}

		logger := a.logger.With("account_id", account.ID.String())
		return gameapi.NewClient(a.settings.APIBaseURL, client, a.settings.RequestTimeout, logger), nil
	}
}

func newRand() domain.Intn {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
