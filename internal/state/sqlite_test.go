package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metacatalog/internal/testutil"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(ctx, core.StoreConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(nil)

	assert.Equal(t, "sqlite", store.DialectName())
	require.NoError(t, store.Open(ctx, core.StoreConfig{Path: ":memory:"}))
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(ctx, core.StoreConfig{Path: path}))
	require.NoError(t, store.Migrate(ctx))

	p := core.NewPolicy("Home")
	require.NoError(t, store.CreateAsset(ctx, &p))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(ctx, core.StoreConfig{Path: path}))
	defer reopened.Close()
	require.NoError(t, reopened.Migrate(ctx))

	got, err := reopened.GetAsset(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Name)
	assert.Equal(t, path, reopened.Path())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(nil)

	_, err := store.ListAssets(ctx)
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.Migrate(ctx), errNotOpened)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_MigrationVersion(t *testing.T) {
	store := newTestStore(t)

	version, err := store.MigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Migrating twice is a no-op.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSQLiteStore_RoundTripsEveryKind(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	policy := core.NewPolicy("Auto Policy")
	policy.Description = "fleet cover"
	policy.OwnerID = "owner-1"
	policy.CreatedAt = "2024-01-01T00:00:00Z"
	policy.PII = true
	policy.RegTag = core.RegTagGDPR
	require.NoError(t, store.CreateAsset(ctx, &policy))
	require.NotEmpty(t, policy.ID)

	claim := core.NewClaim("Hail", decimal.RequireFromString("6000.50"), core.ClaimStatusInReview, policy.ID)
	claim.CreatedAt = "2024-02-01T00:00:00Z"
	require.NoError(t, store.CreateAsset(ctx, &claim))

	model := core.NewModel("Scorer", claim.ID, "missing")
	model.CreatedAt = "2024-03-01T00:00:00Z"
	model.RegTag = core.RegTagHIPAA
	require.NoError(t, store.CreateAsset(ctx, &model))

	got, err := store.GetAsset(ctx, policy.ID)
	require.NoError(t, err)
	assert.Equal(t, policy, *got)

	got, err = store.GetAsset(ctx, claim.ID)
	require.NoError(t, err)
	c, ok := got.AsClaim()
	require.True(t, ok)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("6000.5")))
	assert.Equal(t, core.ClaimStatusInReview, c.Status)
	assert.Equal(t, policy.ID, c.PolicyID)
	assert.Equal(t, core.RegTagNone, got.RegTag)

	got, err = store.GetAsset(ctx, model.ID)
	require.NoError(t, err)
	m, ok := got.AsModel()
	require.True(t, ok)
	assert.Equal(t, []string{claim.ID, "missing"}, m.SourceClaimIDs)
	assert.Equal(t, core.DataKindResult, m.DataKind)
	assert.Equal(t, core.RegTagHIPAA, got.RegTag)
}

func TestSQLiteStore_CreateAssignsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p := core.NewPolicy("Fresh")
	require.NoError(t, store.CreateAsset(ctx, &p))
	_, err := p.CreatedTime()
	assert.NoError(t, err)
}

func TestSQLiteStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	inputs := []struct {
		id      string
		created string
	}{
		{"b", "2024-01-01T00:00:00Z"},
		{"c", "2024-01-01T00:00:00.5Z"},
		{"a", "2024-01-01T00:00:00Z"},
		{"d", "2023-12-31"},
	}
	for _, in := range inputs {
		p := core.NewPolicy(in.id)
		p.ID = in.id
		p.CreatedAt = in.created
		require.NoError(t, store.CreateAsset(ctx, &p))
	}

	assets, err := store.ListAssets(ctx)
	require.NoError(t, err)

	var ids []string
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids)
}

func TestSQLiteStore_ListEmpty(t *testing.T) {
	store := newTestStore(t)

	assets, err := store.ListAssets(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, assets)
	assert.Empty(t, assets)
}

func TestSQLiteStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p := core.NewPolicy("one")
	p.ID = "fixed"
	require.NoError(t, store.CreateAsset(ctx, &p))

	c := core.NewClaim("two", decimal.Zero, core.ClaimStatusNew, "")
	c.ID = "fixed"
	err := store.CreateAsset(ctx, &c)
	assert.ErrorIs(t, err, core.ErrDuplicateID)
}

func TestSQLiteStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	c := core.NewClaim("Flood", decimal.NewFromInt(100), core.ClaimStatusNew, "p1")
	require.NoError(t, store.CreateAsset(ctx, &c))

	c.Name = "Flood (revised)"
	c.Payload = core.ClaimData{Amount: decimal.NewFromInt(250), Status: core.ClaimStatusPaid, PolicyID: "p2"}
	require.NoError(t, store.UpdateAsset(ctx, &c))

	got, err := store.GetAsset(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flood (revised)", got.Name)
	data, _ := got.AsClaim()
	assert.Equal(t, "250", data.Amount.String())
	assert.Equal(t, core.ClaimStatusPaid, data.Status)
	assert.Equal(t, "p2", data.PolicyID)

	require.NoError(t, store.DeleteAsset(ctx, c.ID))
	_, err = store.GetAsset(ctx, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStore_MissingAsset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tests := []struct {
		name string
		op   func() error
	}{
		{"get", func() error { _, err := store.GetAsset(ctx, "nope"); return err }},
		{"update", func() error { p := core.NewPolicy("x"); p.ID = "nope"; return store.UpdateAsset(ctx, &p) }},
		{"delete", func() error { return store.DeleteAsset(ctx, "nope") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
		})
	}
}

func TestSQLiteStore_RejectsAssetWithoutKind(t *testing.T) {
	store := newTestStore(t)

	err := store.CreateAsset(context.Background(), &core.Asset{Name: "orphan"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid kind")
}
