package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// Messenger is one running MTProto client. The connection lives in a background goroutine
// until Close.
type Messenger struct {
	client *telegram.Client

	cancel context.CancelFunc
	ready  chan struct{}
	done   chan struct{}
	runErr error

	closeOnce sync.Once
}

var _ ports.Messenger = (*Messenger)(nil)

func newMessenger(client *telegram.Client) *Messenger {
	return &Messenger{
		client: client,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// start blocks until the client is connected or fails to connect.
func (m *Messenger) start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel

	go func() {
		defer close(m.done)
		m.runErr = m.client.Run(runCtx, func(ctx context.Context) error {
			close(m.ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-m.ready:
		return nil
	case <-m.done:
		cancel()
		if m.runErr == nil {
			return errors.New("messenger stopped before connecting")
		}
		return fmt.Errorf("connect messenger: %w", m.runErr)
	case <-ctx.Done():
		cancel()
		<-m.done
		return ctx.Err()
	}
}

func (m *Messenger) Self(ctx context.Context) (domain.Account, error) {
	user, err := m.client.Self(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get self: %w", mapError(err))
	}
	return accountFromUser(user), nil
}

func (m *Messenger) ResolveBot(ctx context.Context, username string) (domain.BotPeer, error) {
	resolved, err := m.client.API().ContactsResolveUsername(ctx, username)
	if err != nil {
		return domain.BotPeer{}, mapError(err)
	}

	peer, ok := findUser(resolved.Users, func(user *tg.User) bool {
		return strings.EqualFold(user.Username, username)
	})
	if !ok {
		return domain.BotPeer{}, fmt.Errorf("%w: %s not in resolved users", domain.ErrAccessHashUnresolved, username)
	}
	return peer, nil
}

func (m *Messenger) FindBotInDialogs(ctx context.Context, botID int64) (domain.BotPeer, error) {
	iter := query.GetDialogs(m.client.API()).Iter()
	for iter.Next(ctx) {
		if peer, ok := botPeerFromInput(iter.Value().Peer, botID); ok {
			return peer, nil
		}
	}
	if err := iter.Err(); err != nil {
		return domain.BotPeer{}, fmt.Errorf("iterate dialogs: %w", mapError(err))
	}

	return domain.BotPeer{}, fmt.Errorf("%w: bot %d not in dialogs", domain.ErrAccessHashUnresolved, botID)
}

func (m *Messenger) RequestWebView(ctx context.Context, bot domain.BotPeer, url, platform string) (string, error) {
	result, err := m.client.API().MessagesRequestWebView(ctx, &tg.MessagesRequestWebViewRequest{
		Peer:     &tg.InputPeerUser{UserID: bot.UserID, AccessHash: bot.AccessHash},
		Bot:      &tg.InputUser{UserID: bot.UserID, AccessHash: bot.AccessHash},
		URL:      url,
		Platform: platform,
	})
	if err != nil {
		return "", mapError(err)
	}
	return result.URL, nil
}

// Close stops the client and waits for its goroutine to exit.
func (m *Messenger) Close() error {
	var err error
	m.closeOnce.Do(func() {
		if m.cancel == nil {
			return
		}
		m.cancel()
		<-m.done
		if m.runErr != nil && !errors.Is(m.runErr, context.Canceled) {
			err = m.runErr
		}
	})
	return err
}

func accountFromUser(user *tg.User) domain.Account {
	return domain.Account{
		ID:        domain.AccountID(user.ID),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
	}
}

func findUser(users []tg.UserClass, match func(*tg.User) bool) (domain.BotPeer, bool) {
	for _, candidate := range users {
		user, ok := candidate.(*tg.User)
		if !ok || !match(user) {
			continue
		}
		return domain.BotPeer{UserID: user.ID, AccessHash: user.AccessHash}, true
	}
	return domain.BotPeer{}, false
}

func botPeerFromInput(input tg.InputPeerClass, botID int64) (domain.BotPeer, bool) {
	user, ok := input.(*tg.InputPeerUser)
	if !ok || user.UserID != botID {
		return domain.BotPeer{}, false
	}
	return domain.BotPeer{UserID: user.UserID, AccessHash: user.AccessHash}, true
}

// mapError translates platform errors the application reacts to.
func mapError(err error) error {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return fmt.Errorf("%w: flood wait %s: %v", domain.ErrRateLimited, wait, err)
	}
	if tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "USER_DEACTIVATED") {
		return fmt.Errorf("%w: %v", domain.ErrSessionUnauthorized, err)
	}
	return err
}
