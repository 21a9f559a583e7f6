package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/topenv"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRoundTripsBindingShapes(t *testing.T) {
	s := openTestStore(t)
	env := topenv.New().
		With("x", topenv.Binding{Type: dexir.TInt{}}).
		With("Pair", topenv.Binding{IsType: true, TypeDef: dexir.TBool{}})

	require.NoError(t, s.Save(env))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "Pair"}, loaded.Names())

	xb, ok := loaded.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, dexir.TInt{}, xb.Type)

	pb, ok := loaded.Lookup("Pair")
	require.True(t, ok)
	assert.True(t, pb.IsType)
	assert.Equal(t, dexir.TBool{}, pb.TypeDef)
}

func TestSaveReplacesPriorSnapshot(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save(topenv.New().With("a", topenv.Binding{Type: dexir.TInt{}})))
	require.NoError(t, s.Save(topenv.New().With("b", topenv.Binding{Type: dexir.TFloat{}})))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, loaded.Names())
}

func TestExportImportRoundTrip(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save(topenv.New().With("x", topenv.Binding{Type: dexir.TBool{}})))

	data, err := s.Export()
	require.NoError(t, err)

	env, err := Import(data)
	require.NoError(t, err)
	b, ok := env.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, dexir.TBool{}, b.Type)
}

func TestLoadOnEmptyStoreYieldsEmptyEnv(t *testing.T) {
	s := openTestStore(t)
	env, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, env.Len())
}
