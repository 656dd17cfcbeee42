package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEngineContract runs the behavior every Engine must share.
func testEngineContract(t *testing.T, e Engine) {
	t.Helper()

	_, ok, err := e.GetString("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.Set("k", "v1"))
	require.NoError(t, e.Set("k", "v2"))
	v, ok, err := e.GetString("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, e.Set("empty", ""))
	v, ok, err = e.GetString("empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", v)

	require.NoError(t, e.Delete("k"))
	require.NoError(t, e.Delete("k"))
	_, ok, err = e.GetString("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.Set("a", "1"))
	require.NoError(t, e.Set("a:__meta", `{"expiresAt":1}`))
	require.NoError(t, e.ClearAll())
	for _, k := range []string{"a", "a:__meta", "empty"} {
		_, ok, err = e.GetString(k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}

	// Usable after ClearAll.
	require.NoError(t, e.Set("after", "clear"))
	v, _, err = e.GetString("after")
	require.NoError(t, err)
	assert.Equal(t, "clear", v)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	testEngineContract(t, m)

	require.NoError(t, m.Set("b", "2"))
	assert.Equal(t, []string{"after", "b"}, m.Keys())
	assert.Equal(t, 2, m.Len())
}

func openTestBolt(t *testing.T) *BoltDB {
	t.Helper()
	db, err := OpenBoltDB(filepath.Join(t.TempDir(), "test.bbolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBolt(t *testing.T) {
	db := openTestBolt(t)
	ns, err := db.Namespace("app-storage")
	require.NoError(t, err)
	testEngineContract(t, ns)
}

func TestBolt_NamespacesAreIsolated(t *testing.T) {
	db := openTestBolt(t)
	a, err := db.Namespace("a")
	require.NoError(t, err)
	b, err := db.Namespace("b")
	require.NoError(t, err)

	again, err := db.Namespace("a")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, "a", a.Namespace())

	require.NoError(t, a.Set("k", "from-a"))
	require.NoError(t, b.Set("k", "from-b"))
	require.NoError(t, a.ClearAll())

	_, ok, err := a.GetString("k")
	require.NoError(t, err)
	assert.False(t, ok)
	v, ok, err := b.GetString("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-b", v)

	_, err = db.Namespace("")
	assert.Error(t, err)
}

func TestBolt_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.bbolt")
	db, err := OpenBoltDB(path)
	require.NoError(t, err)
	ns, err := db.Namespace("app-storage")
	require.NoError(t, err)
	require.NoError(t, ns.Set("k", `{"a":1}`))
	require.NoError(t, db.Close())

	db, err = OpenBoltDB(path)
	require.NoError(t, err)
	defer db.Close()
	ns, err = db.Namespace("app-storage")
	require.NoError(t, err)
	v, ok, err := ns.GetString("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, v)
}
