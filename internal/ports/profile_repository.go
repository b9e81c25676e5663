package ports

import (
	"context"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
)

type ProfileRepository interface {
	GetBySession(ctx context.Context, session string) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
}
