package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfarm-labs/garden-firmware/internal/model"
)

func TestStoreLoadFallsBackToDefaultsWhenBlobMissing(t *testing.T) {
	store := New(&MemoryBlob{})
	cfg := store.Load()
	assert.Equal(t, model.Default(), cfg)
}

func TestStoreLoadFallsBackOnParseFailure(t *testing.T) {
	blob := &MemoryBlob{}
	require.NoError(t, blob.Write([]byte("not json")))

	store := New(blob)
	cfg := store.Load()
	assert.Equal(t, model.Default(), cfg)
}

func TestStoreLoadFallsBackOnInvalidDocument(t *testing.T) {
	blob := &MemoryBlob{}
	bad := model.Configuration{NumZones: 3, Zones: nil} // count mismatch
	raw, err := json.Marshal(bad)
	require.NoError(t, err)
	require.NoError(t, blob.Write(raw))

	store := New(blob)
	cfg := store.Load()
	assert.Equal(t, model.Default(), cfg)
}

func TestStoreLoadInstallsValidDocument(t *testing.T) {
	blob := &MemoryBlob{}
	want := model.Default()
	want.TopicPrefix = "custom"
	raw, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, blob.Write(raw))

	store := New(blob)
	got := store.Load()
	assert.Equal(t, want, got)
	assert.Equal(t, want, store.Current())
}

func TestStoreUpdateRejectsInvalidDocument(t *testing.T) {
	store := New(&MemoryBlob{})
	store.Load()

	bad := model.Default()
	bad.NumZones = 99 // exceeds max and mismatches Zones length
	err := store.Update(bad)
	assert.Error(t, err)
	assert.Equal(t, model.Default(), store.Current(), "rejected update must not change the installed snapshot")
}

func TestStoreUpdatePersistsAndInstalls(t *testing.T) {
	blob := &MemoryBlob{}
	store := New(blob)
	store.Load()

	next := model.Default()
	next.NumZones = 2
	next.Zones = next.Zones[:2]
	require.NoError(t, store.Update(next))

	assert.Equal(t, next, store.Current())

	raw, err := blob.Read()
	require.NoError(t, err)
	var persisted model.Configuration
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, next, persisted)
}
