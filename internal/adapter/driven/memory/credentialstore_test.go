package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/dropvault/internal/adapter/driven/memory"
)

func TestCredentialStore_GetMissing(t *testing.T) {
	store := memory.NewCredentialStore()

	val, err := store.Get(context.Background(), "client")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialStore_SetOverwrites(t *testing.T) {
	store := memory.NewCredentialStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "client", "first"))
	require.NoError(t, store.Set(ctx, "client", "second"))

	val, err := store.Get(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, "second", val)
}

func TestCredentialStore_EmptyValueClearsSlot(t *testing.T) {
	store := memory.NewCredentialStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "client", "token"))
	require.NoError(t, store.Set(ctx, "other", "kept"))
	require.NoError(t, store.Set(ctx, "client", ""))

	val, err := store.Get(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	other, err := store.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "kept", other)
}
