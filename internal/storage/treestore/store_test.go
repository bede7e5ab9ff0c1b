package treestore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/LeJamon/gocmt/internal/storage/compression"
	"github.com/LeJamon/gocmt/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Backend: "memory", Compressor: "lz4"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestApplyLoad(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	var puts []Entry
	for i := 0; i < 10; i++ {
		puts = append(puts, Entry{Key: []byte(fmt.Sprintf("k%02d", i)), Value: []byte(fmt.Sprintf("value %d", i))})
	}
	require.NoError(t, s.Apply(ctx, puts, nil, []byte{1}))
	require.NoError(t, s.Apply(ctx, nil, [][]byte{[]byte("k03"), []byte("absent")}, []byte{2}))

	got := map[string]string{}
	require.NoError(t, s.Load(ctx, func(k, v []byte) error {
		got[string(k)] = string(v)
		return nil
	}))

	assert.Len(t, got, 9)
	assert.Equal(t, "value 7", got["k07"])
	assert.NotContains(t, got, "k03")

	root, ok, err := s.Root(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{2}, root)
}

func TestLoadSkipsMetadata(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	require.NoError(t, s.Apply(ctx, []Entry{{Key: []byte("x")}}, nil, []byte{0xaa}))

	var keys []string
	require.NoError(t, s.Load(ctx, func(k, v []byte) error {
		keys = append(keys, string(k))
		assert.Empty(t, v)
		return nil
	}))
	assert.Equal(t, []string{"x"}, keys)
}

func TestRoot(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, ok, err := s.Root(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveRoot(ctx, nil))
	root, ok, err := s.Root(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, root)

	require.NoError(t, s.SaveRoot(ctx, []byte{1, 2, 3}))
	root, ok, err = s.Root(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, root)
}

func TestApplyIsAtomic(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("memory", "")
	require.NoError(t, err)
	comp, err := compression.Get("none")
	require.NoError(t, err)

	failing := &failingDB{DB: db}
	s := New(failing, comp)
	defer s.Close()

	require.NoError(t, s.Apply(ctx, []Entry{{Key: []byte("a"), Value: []byte("1")}}, nil, []byte{1}))

	failing.fail = true
	err = s.Apply(ctx, []Entry{{Key: []byte("b"), Value: []byte("2")}}, [][]byte{[]byte("a")}, []byte{2})
	assert.ErrorIs(t, err, errInjected)
	failing.fail = false

	root, _, err := s.Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, root)

	var keys []string
	require.NoError(t, s.Load(ctx, func(k, v []byte) error {
		keys = append(keys, string(k))
		return nil
	}))
	assert.Equal(t, []string{"a"}, keys)
}

var errInjected = errors.New("injected write failure")

// failingDB rejects every batch while fail is set.
type failingDB struct {
	database.DB
	fail bool
}

func (f *failingDB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if f.fail {
		return errInjected
	}
	return f.DB.Batch(ctx, ops)
}

func TestCorruptEntry(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("memory", "")
	require.NoError(t, err)

	comp, err := compression.Get("lz4")
	require.NoError(t, err)
	s := New(db, comp)
	defer s.Close()

	require.NoError(t, db.Write(ctx, entryKey([]byte("bad")), []byte{0x05}))

	err = s.Load(ctx, func(k, v []byte) error { return nil })
	assert.ErrorIs(t, err, compression.ErrCorrupt)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(Config{Backend: "memory", Compressor: "zstd"})
	assert.Error(t, err)

	_, err = Open(Config{Backend: "nosuch", Compressor: "none"})
	assert.ErrorIs(t, err, database.ErrUnknownBackend)
}

func TestReopenOnDisk(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{"pebble", "leveldb", "bbolt"} {
		t.Run(backend, func(t *testing.T) {
			cfg := Config{Backend: backend, Path: filepath.Join(t.TempDir(), "store"), Compressor: "lz4"}

			s, err := Open(cfg)
			require.NoError(t, err)
			require.NoError(t, s.Apply(ctx, []Entry{{Key: []byte("k"), Value: []byte("v")}}, nil, []byte{7}))
			require.NoError(t, s.Close())

			s, err = Open(cfg)
			require.NoError(t, err)
			defer s.Close()

			root, ok, err := s.Root(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte{7}, root)

			var got []byte
			require.NoError(t, s.Load(ctx, func(k, v []byte) error {
				got = v
				return nil
			}))
			assert.Equal(t, []byte("v"), got)
		})
	}
}
