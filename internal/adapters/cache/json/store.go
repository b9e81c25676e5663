package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/bnema/hamster-clicker-cli/internal/ports"
)

const (
	cacheFileMode   = 0o600
	cacheDirMode    = 0o700
	tempFilePattern = ".access-hashes-*.json.tmp"
	indent          = "    "
)

// Store is the shared access-hash cache, keyed by account id.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]int64
}

var _ ports.AccessHashStore = (*Store)(nil)

// Load reads the cache file. The file must exist; an empty JSON object is a valid cache.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("access hash cache %q not found (run `hk config init`): %w", path, err)
		}
		return nil, fmt.Errorf("read access hash cache: %w", err)
	}

	entries, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode access hash cache %q: %w", path, err)
	}

	return &Store{path: filepath.Clean(path), entries: entries}, nil
}

// Init writes an empty cache file unless one already exists.
func Init(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat access hash cache: %w", err)
	}

	store := &Store{path: filepath.Clean(path), entries: map[string]int64{}}
	if err := store.Persist(context.Background()); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Get(accountID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.entries[accountID]
	return hash, ok
}

// PutIfAbsent records hash unless the account already has one. It reports whether it wrote.
func (s *Store) PutIfAbsent(accountID string, hash int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[accountID]; ok && existing != 0 {
		return false
	}
	s.entries[accountID] = hash
	return true
}

func (s *Store) Snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.entries)
}

// Persist rewrites the whole cache file through a temp file and rename.
func (s *Store) Persist(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.Snapshot(), "", indent)
	if err != nil {
		return fmt.Errorf("encode access hash cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), cacheDirMode); err != nil {
		return fmt.Errorf("create access hash cache directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp access hash cache: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp access hash cache: %w", err)
	}

	if err := tempFile.Chmod(cacheFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp access hash cache: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp access hash cache: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace access hash cache: %w", err)
	}

	cleanup = false
	return nil
}

// decode accepts hashes written as JSON numbers or as numeric strings.
func decode(data []byte) (map[string]int64, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make(map[string]int64, len(raw))
	for key, value := range raw {
		var number json.Number
		if err := json.Unmarshal(value, &number); err != nil {
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				return nil, fmt.Errorf("entry %q: expected integer access hash", key)
			}
			number = json.Number(text)
		}

		hash, err := strconv.ParseInt(number.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		entries[key] = hash
	}

	return entries, nil
}
