package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/bnema/hamster-clicker-cli/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestConfigInitWritesTemplateCacheAndSessionsDir(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote settings.yaml")
	assert.Contains(t, stdout, "wrote access_hashes.json")
	assert.Contains(t, stdout, "set api_id and api_hash in settings.yaml")

	cache, err := os.ReadFile(filepath.Join(dir, "access_hashes.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(cache))

	info, err := os.Stat(filepath.Join(dir, "sessions"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	stdout, _, err = executeCLI(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "settings.yaml already exists")
	assert.Contains(t, stdout, "access_hashes.json already exists")
}

func TestConfigShowRejectsTemplateWithoutCredentials(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCLI(t, dir, "config", "init")
	require.NoError(t, err)

	_, _, err = executeCLI(t, dir, "config", "show")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
	assert.Contains(t, err.Error(), "api_id must be a positive integer")
}

func TestConfigShowMasksAPIHash(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	stdout, _, err := executeCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "api_id: 12345")
	assert.Contains(t, stdout, "0b"+strings.Repeat("*", len(testAPIHash)-4)+"8f")
	assert.NotContains(t, stdout, testAPIHash)
}

func TestConfigShowUsesConfigFlag(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "max_taps: 120\n")
	require.NoError(t, os.Rename(filepath.Join(dir, "settings.yaml"), filepath.Join(dir, "farm.yaml")))

	stdout, _, err := executeCLI(t, dir, "--config", "farm.yaml", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "max_taps: 120")
}

func TestRunWithoutSettingsFailsFast(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings file not found")
}

func TestRunWithoutAccessHashCacheFailsFast(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")
	require.NoError(t, os.Remove(filepath.Join(dir, "access_hashes.json")))

	_, _, err := executeCLI(t, dir, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access hash cache")
}

func TestRunWithoutSessionsReportsNoSessionsAndPersistsCache(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "access_hashes.json"), []byte(`{"42": "-77"}`), 0o600))

	_, _, err := executeCLI(t, dir, "run")
	require.ErrorIs(t, err, domain.ErrNoSessions)

	cache, err := os.ReadFile(filepath.Join(dir, "access_hashes.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"42": -77}`, string(cache))
}

func TestRunRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	_, _, err := executeCLI(t, dir, "--log-format", "xml", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported log format")
}

func TestStatusJSONWithoutSessionsReportsNoSessions(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	_, _, err := executeCLI(t, dir, "status", "--json")
	require.ErrorIs(t, err, domain.ErrNoSessions)
}

func TestStatusWithoutSessionsReportsNoSessions(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	_, _, err := executeCLI(t, dir, "status")
	require.ErrorIs(t, err, domain.ErrNoSessions)
}

func TestRunSyncProgressShowsPhasesAndReturnsWorkError(t *testing.T) {
	var out bytes.Buffer
	syncErr := errors.New("sync failed")

	err := runSyncProgress(context.Background(), &out, "Connecting sessions...", func(_ context.Context, report func(string)) error {
		time.Sleep(200 * time.Millisecond)
		report("Syncing accounts (2)...")
		time.Sleep(200 * time.Millisecond)
		return syncErr
	})
	require.ErrorIs(t, err, syncErr)
	assert.Contains(t, out.String(), "Connecting sessions...")
	assert.Contains(t, out.String(), "Syncing accounts (2)...")
}

func TestSyncProgressModelTracksPhases(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start
	model := newSyncProgressModel("Connecting sessions...", func() time.Time { return now }, nil)

	assert.Contains(t, model.View(), "Connecting sessions...")
	assert.NotContains(t, model.View(), "0s")

	now = start.Add(3500 * time.Millisecond)
	assert.Contains(t, model.View(), "3s")

	updated, _ := model.Update(phaseMsg{label: "Syncing accounts (4)...", at: now})
	model = updated.(syncProgressModel)
	assert.Equal(t, now, model.since)
	assert.Contains(t, model.View(), "Syncing accounts (4)...")
	assert.NotContains(t, model.View(), "3s")

	updated, cmd := model.Update(syncDoneMsg{err: errors.New("boom")})
	model = updated.(syncProgressModel)
	require.NotNil(t, cmd)
	assert.Empty(t, model.View())
	assert.EqualError(t, model.err, "boom")
}

func TestSessionListShowsFilesAndProfiles(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")
	writeSessionFile(t, dir, "alpha")
	writeSessionFile(t, dir, "beta")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts.toml"), []byte(strings.Join([]string{
		"version = 1",
		"",
		"[[profiles]]",
		`session = "alpha"`,
		`name = "Main farm"`,
		`proxy = "socks5://127.0.0.1:1080"`,
		"",
		"[[profiles]]",
		`session = "gone"`,
		"disabled = true",
		"",
	}, "\n")), 0o600))

	stdout, _, err := executeCLI(t, dir, "session", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"SESSION", "NAME", "PROXY", "STATE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"alpha", "Main", "farm", "socks5://127.0.0.1:1080", "enabled"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"beta", "-", "-", "enabled"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"gone", "-", "-", "missing", "file"}, strings.Fields(lines[3]))
}

func TestSessionListEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	stdout, _, err := executeCLI(t, dir, "session", "list")
	require.NoError(t, err)
	assert.Equal(t, "no sessions in sessions\n", stdout)
}

func TestSessionSetUpdatesProfile(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")
	writeSessionFile(t, dir, "alpha")

	stdout, _, err := executeCLI(t, dir, "session", "set", "alpha", "--alias", "Farm", "--disabled")
	require.NoError(t, err)
	assert.Equal(t, "profile \"alpha\" updated (disabled)\n", stdout)

	stdout, _, err = executeCLI(t, dir, "session", "set", "alpha", "--proxy", "http://proxy:8080")
	require.NoError(t, err)
	assert.Equal(t, "profile \"alpha\" updated (disabled)\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "accounts.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Farm")
	assert.Contains(t, string(data), "http://proxy:8080")
	assert.Contains(t, string(data), "disabled = true")
}

func TestSessionSetRejectsInvalidProxy(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	_, _, err := executeCLI(t, dir, "session", "set", "alpha", "--proxy", "ftp://proxy:21")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported proxy scheme")
}

func TestSessionSetRequiresAFlag(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	_, _, err := executeCLI(t, dir, "session", "set", "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profile fields to update")
}

func TestSessionCreateRequiresName(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	_, _, err := executeCLI(t, dir, "session", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"name\" not set")
}

func TestSessionCreateRejectsInvalidName(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFixture(t, dir, "")

	_, _, err := executeCLI(t, dir, "session", "create", "--name", "../escape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session name")
}

const testAPIHash = "0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d8f"

// executeCLI runs the root command inside dir so relative settings paths resolve there.
func executeCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)
	unsetEnv(t, "HK_API_ID")
	unsetEnv(t, "HK_API_HASH")

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeSettingsFixture(t *testing.T, dir string, extra string) {
	t.Helper()

	settings := "api_id: 12345\napi_hash: " + testAPIHash + "\n" + extra
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(settings), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "access_hashes.json"), []byte("{}"), 0o600))
}

func writeSessionFile(t *testing.T, dir, name string) {
	t.Helper()

	sessions := filepath.Join(dir, "sessions")
	require.NoError(t, os.MkdirAll(sessions, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(sessions, name+".session"), []byte(`{"Version":1}`), 0o600))
}
