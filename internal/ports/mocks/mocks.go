// Package mocks holds testify mocks for the ports interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/ports"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

var (
	_ ports.GameAPI           = (*MockGameAPI)(nil)
	_ ports.Messenger         = (*MockMessenger)(nil)
	_ ports.Connector         = (*MockConnector)(nil)
	_ ports.SessionSource     = (*MockSessionSource)(nil)
	_ ports.AccessHashStore   = (*MockAccessHashStore)(nil)
	_ ports.ProfileRepository = (*MockProfileRepository)(nil)
	_ ports.Sleeper           = (*MockSleeper)(nil)
)

type MockGameAPI struct {
	mock.Mock
}

func NewMockGameAPI(t testingT) *MockGameAPI {
	m := &MockGameAPI{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGameAPI) AuthByWebApp(ctx context.Context, initData string) (string, error) {
	args := m.Called(ctx, initData)
	return args.String(0), args.Error(1)
}

func (m *MockGameAPI) Sync(ctx context.Context) (domain.ClickerUser, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ClickerUser), args.Error(1)
}

func (m *MockGameAPI) Tap(ctx context.Context, availableTaps, count int) (domain.ClickerUser, error) {
	args := m.Called(ctx, availableTaps, count)
	return args.Get(0).(domain.ClickerUser), args.Error(1)
}

func (m *MockGameAPI) UpgradesForBuy(ctx context.Context) ([]domain.Upgrade, error) {
	args := m.Called(ctx)
	upgrades, _ := args.Get(0).([]domain.Upgrade)
	return upgrades, args.Error(1)
}

func (m *MockGameAPI) BuyUpgrade(ctx context.Context, upgradeID string) (domain.BuyResult, error) {
	args := m.Called(ctx, upgradeID)
	return args.Get(0).(domain.BuyResult), args.Error(1)
}

func (m *MockGameAPI) ListTasks(ctx context.Context) ([]domain.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *MockGameAPI) CheckTask(ctx context.Context, taskID string) (domain.TaskCheckResult, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(domain.TaskCheckResult), args.Error(1)
}

type MockMessenger struct {
	mock.Mock
}

func NewMockMessenger(t testingT) *MockMessenger {
	m := &MockMessenger{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMessenger) Self(ctx context.Context) (domain.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Account), args.Error(1)
}

func (m *MockMessenger) ResolveBot(ctx context.Context, username string) (domain.BotPeer, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.BotPeer), args.Error(1)
}

func (m *MockMessenger) FindBotInDialogs(ctx context.Context, botID int64) (domain.BotPeer, error) {
	args := m.Called(ctx, botID)
	return args.Get(0).(domain.BotPeer), args.Error(1)
}

func (m *MockMessenger) RequestWebView(ctx context.Context, bot domain.BotPeer, url, platform string) (string, error) {
	args := m.Called(ctx, bot, url, platform)
	return args.String(0), args.Error(1)
}

func (m *MockMessenger) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockConnector struct {
	mock.Mock
}

func NewMockConnector(t testingT) *MockConnector {
	m := &MockConnector{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConnector) Connect(ctx context.Context, session domain.SessionFile, proxyURL string) (ports.Messenger, error) {
	args := m.Called(ctx, session, proxyURL)
	messenger, _ := args.Get(0).(ports.Messenger)
	return messenger, args.Error(1)
}

type MockSessionSource struct {
	mock.Mock
}

func NewMockSessionSource(t testingT) *MockSessionSource {
	m := &MockSessionSource{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionSource) Discover(ctx context.Context) ([]domain.SessionFile, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]domain.SessionFile)
	return sessions, args.Error(1)
}

type MockAccessHashStore struct {
	mock.Mock
}

func NewMockAccessHashStore(t testingT) *MockAccessHashStore {
	m := &MockAccessHashStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccessHashStore) Get(accountID string) (int64, bool) {
	args := m.Called(accountID)
	return args.Get(0).(int64), args.Bool(1)
}

func (m *MockAccessHashStore) PutIfAbsent(accountID string, hash int64) bool {
	args := m.Called(accountID, hash)
	return args.Bool(0)
}

func (m *MockAccessHashStore) Snapshot() map[string]int64 {
	args := m.Called()
	snapshot, _ := args.Get(0).(map[string]int64)
	return snapshot
}

func (m *MockAccessHashStore) Persist(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func NewMockProfileRepository(t testingT) *MockProfileRepository {
	m := &MockProfileRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockProfileRepository) GetBySession(ctx context.Context, session string) (domain.Profile, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	args := m.Called(ctx)
	profiles, _ := args.Get(0).([]domain.Profile)
	return profiles, args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

type MockSleeper struct {
	mock.Mock
}

func NewMockSleeper(t testingT) *MockSleeper {
	m := &MockSleeper{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
