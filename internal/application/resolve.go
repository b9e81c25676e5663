package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
)

// ResolveBotPeer resolves the game bot by username and falls back to a dialog scan when
// the platform rate-limits the lookup.
func ResolveBotPeer(ctx context.Context, messenger ports.Messenger) (domain.BotPeer, error) {
	peer, err := messenger.ResolveBot(ctx, domain.BotUsername)
	if err == nil {
		return peer, nil
	}
	if !errors.Is(err, domain.ErrRateLimited) {
		return domain.BotPeer{}, fmt.Errorf("resolve %s: %w", domain.BotUsername, err)
	}

	peer, err = messenger.FindBotInDialogs(ctx, domain.BotID)
	if err != nil {
		return domain.BotPeer{}, fmt.Errorf("scan dialogs for bot: %w", err)
	}
	if !peer.Resolved() {
		return domain.BotPeer{}, domain.ErrAccessHashUnresolved
	}

	return peer, nil
}
