package badger

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackendInMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	assert.False(t, backend.IsClosed())

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestOpenBackendCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/db"

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	err = backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte("k"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, []byte("v"), val)
			return nil
		})
	}, false)
	require.NoError(t, err)
}
