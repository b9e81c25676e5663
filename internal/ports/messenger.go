package ports

import (
	"context"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
)

// Messenger is one open messaging-platform connection.
type Messenger interface {
	Self(ctx context.Context) (domain.Account, error)
	// ResolveBot resolves a bot by username. Rate limiting is reported as domain.ErrRateLimited.
	ResolveBot(ctx context.Context, username string) (domain.BotPeer, error)
	// FindBotInDialogs scans the dialog list for the bot with the given user id.
	FindBotInDialogs(ctx context.Context, botID int64) (domain.BotPeer, error)
	// RequestWebView returns the deep-link URL of the bot's web app.
	RequestWebView(ctx context.Context, bot domain.BotPeer, url, platform string) (string, error)
	Close() error
}

type Connector interface {
	Connect(ctx context.Context, session domain.SessionFile, proxyURL string) (Messenger, error)
}

type SessionSource interface {
	Discover(ctx context.Context) ([]domain.SessionFile, error)
}
