// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/events"
	"github.com/leapstack-labs/metacatalog/internal/state"
	"github.com/leapstack-labs/metacatalog/internal/testutil"
	"github.com/leapstack-labs/metacatalog/internal/ui/session"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// TestOwner is the owner ID used by fixtures and test identities.
const TestOwner = "0f8fad5b-d9cb-469f-a165-70867728950e"

// TestNow is the fixed clock of fixture services.
var TestNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        core.Store
	Service      *catalog.Service
	Bus          *events.LocalBus
	SessionStore *sessions.CookieStore

	t *testing.T
}

// SetupTestFixture creates an in-memory SQLite store, a local bus and a
// catalog service with a fixed clock. Extra options are applied last.
func SetupTestFixture(t *testing.T, opts ...catalog.Option) *TestFixture {
	t.Helper()

	ctx := context.Background()
	logger := testutil.NewTestLogger(t)

	store := state.NewSQLiteStore(logger)
	require.NoError(t, store.Open(ctx, core.StoreConfig{Path: ":memory:"}))
	t.Cleanup(func() {
		_ = store.Close()
	})
	require.NoError(t, store.Migrate(ctx))

	bus := events.NewLocalBus()
	base := []catalog.Option{
		catalog.WithBus(bus),
		catalog.WithClock(func() time.Time { return TestNow }),
		catalog.WithLogger(logger),
	}
	svc := catalog.NewService(store, append(base, opts...)...)

	return &TestFixture{
		Store:        store,
		Service:      svc,
		Bus:          bus,
		SessionStore: NewTestSessionStore(),
		t:            t,
	}
}

// Create stores an asset built from d, owned by TestOwner.
func (f *TestFixture) Create(d catalog.Draft) core.Asset {
	f.t.Helper()
	a, err := f.Service.Create(context.Background(), TestOwner, d)
	require.NoError(f.t, err)
	return *a
}

// SampleAssets creates a policy, two claims and a model over them. The
// first claim is suspicious: $6,000 filed 31 days after its policy.
func (f *TestFixture) SampleAssets() (policy, hail, flood, model core.Asset) {
	f.t.Helper()

	policy = f.Create(catalog.Draft{
		Kind:      core.KindPolicy,
		Name:      "Homeowners Policy",
		RegTag:    core.RegTagGDPR,
		PII:       true,
		CreatedAt: "2024-01-01T00:00:00Z",
	})
	hail = f.Create(catalog.Draft{
		Kind:        core.KindClaim,
		Name:        "Hail Damage",
		ClaimAmount: decimal.NewFromInt(6000),
		Status:      core.ClaimStatusInReview,
		PolicyID:    policy.ID,
		CreatedAt:   "2024-02-01T00:00:00Z",
	})
	flood = f.Create(catalog.Draft{
		Kind:        core.KindClaim,
		Name:        "Basement Flood",
		ClaimAmount: decimal.NewFromInt(1200),
		PolicyID:    policy.ID,
		CreatedAt:   "2024-03-01T00:00:00Z",
	})
	model = f.Create(catalog.Draft{
		Kind:           core.KindModel,
		Name:           "Claim Severity Model",
		SourceClaimIDs: []string{hail.ID, flood.ID},
		CreatedAt:      "2024-04-01T00:00:00Z",
	})
	return policy, hail, flood, model
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithIdentity attaches a session identity, as the session
// middleware would.
func RequestWithIdentity(r *http.Request, id session.Identity) *http.Request {
	return r.WithContext(session.WithIdentity(r.Context(), id))
}

// RequestWithTimeout wraps a request with a context timeout. The context is
// cancelled when the test ends.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// SignalsRequest builds a datastar request whose body carries signals as JSON.
func SignalsRequest(t *testing.T, method, target string, signals any) *http.Request {
	t.Helper()
	body, err := json.Marshal(signals)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return req
}

// Owner returns the default test identity.
func Owner() session.Identity {
	return session.Identity{OwnerID: TestOwner}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return session.NewStore("test-secret-key-32-bytes-long!!")
}
