package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/suppliers-api/internal/platform/db"
)

func TestSeedSuppliersIsRerunnable(t *testing.T) {
	ctx := context.Background()
	store, closeStore, err := open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(closeStore)

	created, err := seedSuppliers(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, len(sampleSuppliers), created)

	created, err = seedSuppliers(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, created)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, len(sampleSuppliers))
}

func TestGetenvFallback(t *testing.T) {
	t.Setenv("SEED_TEST_VALUE", "")
	assert.Equal(t, "fallback", getenv("SEED_TEST_VALUE", "fallback"))
	t.Setenv("SEED_TEST_VALUE", "set")
	assert.Equal(t, "set", getenv("SEED_TEST_VALUE", "fallback"))
}
