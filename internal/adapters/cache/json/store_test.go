package json

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCache(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "access_hashes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRequiresExistingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "access_hashes.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "hk config init")
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	_, err := Load(writeCache(t, "{not json"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode access hash cache")
}

func TestLoadAcceptsEmptyObject(t *testing.T) {
	t.Parallel()

	store, err := Load(writeCache(t, "{}"))
	require.NoError(t, err)
	assert.Empty(t, store.Snapshot())
}

func TestLoadAcceptsLargeHashes(t *testing.T) {
	t.Parallel()

	store, err := Load(writeCache(t, `{"42": -8815466318245741123, "43": "123"}`))
	require.NoError(t, err)

	hash, ok := store.Get("42")
	require.True(t, ok)
	assert.Equal(t, int64(-8815466318245741123), hash)

	hash, ok = store.Get("43")
	require.True(t, ok)
	assert.Equal(t, int64(123), hash)
}

func TestPutIfAbsentKeepsFirstWrite(t *testing.T) {
	t.Parallel()

	store, err := Load(writeCache(t, `{"42": 1}`))
	require.NoError(t, err)

	assert.False(t, store.PutIfAbsent("42", 2))
	assert.True(t, store.PutIfAbsent("43", 3))
	assert.False(t, store.PutIfAbsent("43", 4))

	assert.Equal(t, map[string]int64{"42": 1, "43": 3}, store.Snapshot())
}

func TestPersistWritesSupersetOfLoadedEntries(t *testing.T) {
	t.Parallel()

	path := writeCache(t, `{"1": 10, "2": 20}`)
	store, err := Load(path)
	require.NoError(t, err)

	store.PutIfAbsent("3", 30)
	require.NoError(t, store.Persist(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var persisted map[string]int64
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, map[string]int64{"1": 10, "2": 20, "3": 30}, persisted)
	assert.Contains(t, string(data), "\n    \"1\": 10")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPersistCanceledContextKeepsFile(t *testing.T) {
	t.Parallel()

	path := writeCache(t, `{"1": 10}`)
	store, err := Load(path)
	require.NoError(t, err)
	store.PutIfAbsent("2", 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.Persist(ctx), context.Canceled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": 10}`, string(data))
}

func TestConcurrentPutIfAbsentIsIdempotent(t *testing.T) {
	t.Parallel()

	store, err := Load(writeCache(t, "{}"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.PutIfAbsent("42", int64(i)) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			store.PutIfAbsent(strconv.Itoa(i), int64(i))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Len(t, store.Snapshot(), 21)
}

func TestInitCreatesEmptyCacheOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "access_hashes.json")

	created, err := Init(path)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))

	require.NoError(t, os.WriteFile(path, []byte(`{"1": 1}`), 0o600))
	created, err = Init(path)
	require.NoError(t, err)
	assert.False(t, created)

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 1}, store.Snapshot())
}
