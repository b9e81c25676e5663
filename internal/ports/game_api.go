package ports

import (
	"context"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
)

// GameAPI is bound to a single account. AuthByWebApp installs the bearer token used by
// every later call.
type GameAPI interface {
	AuthByWebApp(ctx context.Context, initData string) (string, error)
	Sync(ctx context.Context) (domain.ClickerUser, error)
	Tap(ctx context.Context, availableTaps, count int) (domain.ClickerUser, error)
	UpgradesForBuy(ctx context.Context) ([]domain.Upgrade, error)
	BuyUpgrade(ctx context.Context, upgradeID string) (domain.BuyResult, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CheckTask(ctx context.Context, taskID string) (domain.TaskCheckResult, error)
}
