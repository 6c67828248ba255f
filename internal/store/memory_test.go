package store

import (
	"context"
	"testing"

	berrors "github.com/adenisov/bookstock/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore_FindByName(t *testing.T) {
	// given
	memStore := NewMemoryStore()
	_, err := memStore.Upsert(context.Background(), Book{Name: "Atlas", Price: 100, Quantity: 3})
	require.NoError(t, err)

	// when / then
	found, err := memStore.FindByName(context.Background(), "Atlas")
	require.NoError(t, err)
	assert.Equal(t, "Atlas", found.Name)
	assert.Equal(t, int64(3), found.Quantity)

	_, err = memStore.FindByName(context.Background(), "missing")
	assert.ErrorIs(t, err, berrors.ErrBookNotFound)
}

func Test_MemoryStore_UpsertPreservesID(t *testing.T) {
	// given
	memStore := NewMemoryStore()
	created, err := memStore.Upsert(context.Background(), Book{Name: "Atlas", Price: 100, Quantity: 3})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	// when: upsert under the same name with a different id set
	updated, err := memStore.Upsert(context.Background(), Book{ID: uuid.New(), Name: "Atlas", Price: 200, Quantity: 5})

	// then: the id assigned on creation wins
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(200), updated.Price)
	assert.Equal(t, int64(5), updated.Quantity)
}

func Test_MemoryStore_ListIsIdempotent(t *testing.T) {
	// given
	memStore := NewMemoryStore()
	for _, name := range []string{"C", "A", "B"} {
		_, err := memStore.Upsert(context.Background(), Book{Name: name, Price: 100, Quantity: 1})
		require.NoError(t, err)
	}

	// when: repeated reads with no intervening writes
	first, err := memStore.List(context.Background())
	require.NoError(t, err)
	second, err := memStore.List(context.Background())
	require.NoError(t, err)

	// then
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "A", first[0].Name)
	assert.Equal(t, "C", first[2].Name)
}

func Test_MemoryStore_SaveUploadRecord(t *testing.T) {
	// given
	memStore := NewMemoryStore()
	// when
	record, err := memStore.SaveUploadRecord(context.Background(), "https://media.example.com/x.png")
	// then
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/x.png", record.FileURL)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, 1, memStore.UploadCount())
}
