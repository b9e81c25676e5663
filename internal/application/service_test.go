package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestServiceListSessionsJoinsProfiles(t *testing.T) {
	sessions := mocks.NewMockSessionSource(t)
	profiles := mocks.NewMockProfileRepository(t)
	service := NewService(sessions, profiles)

	sessions.On("Discover", mock.Anything).Return([]domain.SessionFile{
		{Name: "beta", Path: "sessions/beta.session"},
		{Name: "alpha", Path: "sessions/alpha.session"},
	}, nil)
	profiles.On("List", mock.Anything).Return([]domain.Profile{
		{Session: "alpha", Name: "Main"},
		{Session: "gone", Disabled: true},
	}, nil)

	entries, err := service.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "alpha", entries[0].Session.Name)
	assert.True(t, entries[0].Registered)
	assert.Equal(t, "Main", entries[0].Profile.Name)
	assert.False(t, entries[0].Missing)

	assert.Equal(t, "beta", entries[1].Session.Name)
	assert.False(t, entries[1].Registered)
	assert.Equal(t, domain.Profile{Session: "beta"}, entries[1].Profile)

	assert.Equal(t, "gone", entries[2].Session.Name)
	assert.True(t, entries[2].Missing)
	assert.True(t, entries[2].Profile.Disabled)
}

func TestServiceListSessionsPropagatesDiscoverError(t *testing.T) {
	sessions := mocks.NewMockSessionSource(t)
	profiles := mocks.NewMockProfileRepository(t)
	service := NewService(sessions, profiles)

	sessions.On("Discover", mock.Anything).Return(nil, errors.New("permission denied"))

	_, err := service.ListSessions(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "discover sessions")
}

func TestServiceUpdateProfileCreatesMissingProfile(t *testing.T) {
	sessions := mocks.NewMockSessionSource(t)
	profiles := mocks.NewMockProfileRepository(t)
	service := NewService(sessions, profiles)

	name := "Farm"
	proxy := "socks5://127.0.0.1:1080"
	want := domain.Profile{Session: "main", Name: name, Proxy: proxy}

	profiles.On("GetBySession", mock.Anything, "main").Return(domain.Profile{}, domain.ErrProfileNotFound)
	profiles.On("Save", mock.Anything, want).Return(nil)

	got, err := service.UpdateProfile(context.Background(), "main", ProfileUpdate{Name: &name, Proxy: &proxy})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestServiceUpdateProfileKeepsUntouchedFields(t *testing.T) {
	sessions := mocks.NewMockSessionSource(t)
	profiles := mocks.NewMockProfileRepository(t)
	service := NewService(sessions, profiles)

	disabled := true
	stored := domain.Profile{Session: "main", Name: "Farm", Proxy: "http://proxy:8080"}
	want := stored
	want.Disabled = true

	profiles.On("GetBySession", mock.Anything, "main").Return(stored, nil)
	profiles.On("Save", mock.Anything, want).Return(nil)

	got, err := service.UpdateProfile(context.Background(), "main", ProfileUpdate{Disabled: &disabled})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestServiceUpdateProfileRejectsInvalidProxy(t *testing.T) {
	sessions := mocks.NewMockSessionSource(t)
	profiles := mocks.NewMockProfileRepository(t)
	service := NewService(sessions, profiles)

	proxy := "ftp://proxy:21"
	profiles.On("GetBySession", mock.Anything, "main").Return(domain.Profile{Session: "main"}, nil)

	_, err := service.UpdateProfile(context.Background(), "main", ProfileUpdate{Proxy: &proxy})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported proxy scheme")
	profiles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestServiceUpdateProfileRequiresChanges(t *testing.T) {
	service := NewService(mocks.NewMockSessionSource(t), mocks.NewMockProfileRepository(t))

	_, err := service.UpdateProfile(context.Background(), "main", ProfileUpdate{})
	require.Error(t, err)
}

func TestServiceUpdateProfileWrapsRepositoryError(t *testing.T) {
	sessions := mocks.NewMockSessionSource(t)
	profiles := mocks.NewMockProfileRepository(t)
	service := NewService(sessions, profiles)

	name := "Farm"
	profiles.On("GetBySession", mock.Anything, "main").Return(domain.Profile{}, errors.New("disk full"))

	_, err := service.UpdateProfile(context.Background(), "main", ProfileUpdate{Name: &name})
	require.Error(t, err)
	assert.ErrorContains(t, err, "get profile: disk full")
}
