package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bnema/hamster-clicker-cli/internal/adapters/sessions/file"
	"github.com/bnema/hamster-clicker-cli/internal/adapters/transport"
	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
)

// Connector opens MTProto clients backed by local session files.
type Connector struct {
	AppID   int
	AppHash string
	Logger  *slog.Logger
}

var _ ports.Connector = (*Connector)(nil)

func NewConnector(appID int, appHash string, logger *slog.Logger) *Connector {
	return &Connector{AppID: appID, AppHash: appHash, Logger: logger}
}

func (c *Connector) newClient(sessionPath, proxyURL string) (*telegram.Client, error) {
	dial, err := transport.NewDialer(proxyURL)
	if err != nil {
		return nil, err
	}

	return telegram.NewClient(c.AppID, c.AppHash, telegram.Options{
		SessionStorage: file.NewStorage(sessionPath),
		Resolver:       dcs.Plain(dcs.PlainOptions{Dial: dcs.DialFunc(dial)}),
		NoUpdates:      true,
	}), nil
}

// Connect starts a client for an existing session and checks it is still authorized.
func (c *Connector) Connect(ctx context.Context, session domain.SessionFile, proxyURL string) (ports.Messenger, error) {
	client, err := c.newClient(session.Path, proxyURL)
	if err != nil {
		return nil, err
	}

	messenger := newMessenger(client)
	if err := messenger.start(ctx); err != nil {
		return nil, err
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		_ = messenger.Close()
		return nil, fmt.Errorf("auth status: %w", mapError(err))
	}
	if !status.Authorized {
		_ = messenger.Close()
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionUnauthorized, session.Name)
	}

	c.logger().Debug("messenger connected", "session", session.Name, "proxied", proxyURL != "")
	return messenger, nil
}

func (c *Connector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
