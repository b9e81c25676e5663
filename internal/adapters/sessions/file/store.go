package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
	"github.com/gotd/td/session"
)

const (
	storeDirMode    = 0o700
	sessionFileMode = 0o600
	// Extension marks credential files inside the sessions directory.
	Extension       = ".session"
	tempFilePattern = ".session-*.tmp"
)

// Source discovers session files in one directory.
type Source struct {
	root string
}

var _ ports.SessionSource = (*Source)(nil)

func NewSource(root string) *Source {
	return &Source{root: filepath.Clean(root)}
}

// Discover lists <root>/*.session sorted by name. A missing directory yields no sessions.
func (s *Source) Discover(ctx context.Context) ([]domain.SessionFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	sessions := make([]domain.SessionFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		sessions = append(sessions, domain.SessionFile{
			Name: strings.TrimSuffix(entry.Name(), Extension),
			Path: filepath.Join(s.root, entry.Name()),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Name < sessions[j].Name
	})

	return sessions, nil
}

// PathFor returns the file a new session called name would be stored in.
func (s *Source) PathFor(name string) (domain.SessionFile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.SessionFile{}, errors.New("session name is empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." || strings.HasPrefix(trimmed, ".") {
		return domain.SessionFile{}, fmt.Errorf("invalid session name %q", name)
	}

	return domain.SessionFile{
		Name: trimmed,
		Path: filepath.Join(s.root, trimmed+Extension),
	}, nil
}

// Storage keeps one messenger session blob on disk.
type Storage struct {
	path string
	mu   sync.RWMutex
}

var _ session.Storage = (*Storage)(nil)

func NewStorage(path string) *Storage {
	return &Storage{path: filepath.Clean(path)}
}

func (s *Storage) LoadSession(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return nil, session.ErrNotFound
	}

	return data, nil
}

func (s *Storage) StoreSession(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return fmt.Errorf("create sessions directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
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
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	cleanup = false
	return nil
}
