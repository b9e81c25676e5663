package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
)

// Service manages the local session files and their registry profiles.
type Service struct {
	sessions ports.SessionSource
	profiles ports.ProfileRepository
}

func NewService(sessions ports.SessionSource, profiles ports.ProfileRepository) *Service {
	return &Service{
		sessions: sessions,
		profiles: profiles,
	}
}

// SessionEntry joins a session file with its optional profile.
type SessionEntry struct {
	Session    domain.SessionFile
	Profile    domain.Profile
	Registered bool
	// Missing marks a registered profile whose session file is gone.
	Missing bool
}

// ProfileUpdate carries the fields to change. Nil fields keep their stored value.
type ProfileUpdate struct {
	Name     *string
	Proxy    *string
	Disabled *bool
}

func (u ProfileUpdate) empty() bool {
	return u.Name == nil && u.Proxy == nil && u.Disabled == nil
}

func (s *Service) ListSessions(ctx context.Context) ([]SessionEntry, error) {
	files, err := s.sessions.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover sessions: %w", err)
	}

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	bySession := make(map[string]domain.Profile, len(profiles))
	for _, profile := range profiles {
		bySession[profile.Session] = profile
	}

	entries := make([]SessionEntry, 0, len(files)+len(profiles))
	for _, file := range files {
		entry := SessionEntry{Session: file, Profile: domain.Profile{Session: file.Name}}
		if profile, ok := bySession[file.Name]; ok {
			entry.Profile = profile
			entry.Registered = true
			delete(bySession, file.Name)
		}
		entries = append(entries, entry)
	}

	for _, profile := range bySession {
		entries = append(entries, SessionEntry{
			Session:    domain.SessionFile{Name: profile.Session},
			Profile:    profile,
			Registered: true,
			Missing:    true,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Session.Name < entries[j].Session.Name
	})

	return entries, nil
}

// UpdateProfile applies update on top of the stored profile, creating it when absent.
func (s *Service) UpdateProfile(ctx context.Context, session string, update ProfileUpdate) (domain.Profile, error) {
	if update.empty() {
		return domain.Profile{}, errors.New("no profile fields to update")
	}

	profile, err := s.profiles.GetBySession(ctx, session)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return domain.Profile{}, fmt.Errorf("get profile: %w", err)
		}
		profile = domain.Profile{Session: session}
	}

	if update.Name != nil {
		profile.Name = *update.Name
	}
	if update.Proxy != nil {
		profile.Proxy = *update.Proxy
	}
	if update.Disabled != nil {
		profile.Disabled = *update.Disabled
	}

	if err := profile.Validate(); err != nil {
		return domain.Profile{}, fmt.Errorf("validate profile: %w", err)
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	return profile, nil
}
