package ports

import "context"

// AccessHashStore caches the bot access hash per account id. Entries are written at most once.
type AccessHashStore interface {
	Get(accountID string) (int64, bool)
	PutIfAbsent(accountID string, hash int64) bool
	Snapshot() map[string]int64
	Persist(ctx context.Context) error
}
