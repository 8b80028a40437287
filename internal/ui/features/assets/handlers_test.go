package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/events"
	"github.com/leapstack-labs/metacatalog/internal/ui/features"
	"github.com/leapstack-labs/metacatalog/internal/ui/session"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T, opts ...catalog.Option) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, opts...)
	handlers := NewHandlers(fixture.Service, fixture.SessionStore, false, nil)

	return handlers, fixture
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func countAssets(t *testing.T, fixture *features.TestFixture) int {
	t.Helper()
	assets, err := fixture.Service.Snapshot(context.Background())
	require.NoError(t, err)
	return len(assets)
}

// =============================================================================
// CatalogPage Tests
// =============================================================================

func TestCatalogPage(t *testing.T) {
	tests := []struct {
		name     string
		identity session.Identity
		readOnly bool
		wantBody []string
		denyBody []string
	}{
		{
			name:     "renders shell and asset cards",
			identity: features.Owner(),
			wantBody: []string{
				"<!doctype html>",
				"<title>Catalog · metacatalog</title>",
				"data-init",
				"/catalog/updates",
				"User: 0f8fad5b",
				"Homeowners Policy",
				"Hail Damage",
				"$6,000.00",
				"Claim Severity Model",
				"Sources: Hail Damage, Basement Flood",
				"Showing 4 of 4 assets",
				"New Asset",
				"/edit",
			},
		},
		{
			name:     "view mode hides mutations",
			identity: session.Identity{OwnerID: features.TestOwner, ViewMode: true},
			wantBody: []string{"Hail Damage", "View mode"},
			denyBody: []string{"New Asset", "/edit", "@delete"},
		},
		{
			name:     "read-only server locks view mode",
			identity: features.Owner(),
			readOnly: true,
			wantBody: []string{"The server runs read-only"},
			denyBody: []string{"New Asset", "/session/view-mode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers, fixture := setupTestHandlers(t, catalog.WithReadOnly(tt.readOnly))
			if tt.readOnly {
				fixture.Service.SetReadOnly(false)
				fixture.SampleAssets()
				fixture.Service.SetReadOnly(true)
			} else {
				fixture.SampleAssets()
			}

			req := features.RequestWithIdentity(httptest.NewRequest(http.MethodGet, "/", nil), tt.identity)
			rec := serve(handlers.CatalogPage, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			for _, deny := range tt.denyBody {
				assert.NotContains(t, body, deny)
			}
		})
	}
}

func TestCatalogPage_Empty(t *testing.T) {
	handlers, _ := setupTestHandlers(t)

	req := features.RequestWithIdentity(httptest.NewRequest(http.MethodGet, "/", nil), features.Owner())
	rec := serve(handlers.CatalogPage, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No assets yet.")
}

// =============================================================================
// Filter Tests
// =============================================================================

func TestFilterAssets(t *testing.T) {
	tests := []struct {
		name     string
		signals  Signals
		wantBody []string
		denyBody []string
	}{
		{
			name:     "search is case-insensitive",
			signals:  Signals{Search: "HAIL", Kind: catalog.All, RegTag: catalog.All},
			wantBody: []string{"Hail Damage", "Showing 1 of 4 assets"},
			denyBody: []string{"Basement Flood"},
		},
		{
			name:     "kind filter",
			signals:  Signals{Kind: "Claim", RegTag: catalog.All},
			wantBody: []string{"Hail Damage", "Basement Flood", "Showing 2 of 4 assets"},
			denyBody: []string{"Claim Severity Model"},
		},
		{
			name:     "regulatory tag filter",
			signals:  Signals{Kind: catalog.All, RegTag: "GDPR"},
			wantBody: []string{"Homeowners Policy", "Showing 1 of 4 assets"},
		},
		{
			name:     "no match",
			signals:  Signals{Search: "earthquake"},
			wantBody: []string{"No assets match the current filters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers, fixture := setupTestHandlers(t)
			fixture.SampleAssets()

			req := features.SignalsRequest(t, http.MethodPost, "/catalog/filter", tt.signals)
			rec := serve(handlers.FilterAssets, features.RequestWithIdentity(req, features.Owner()))

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "event:")
			assert.Contains(t, body, `id="catalog-list"`)
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			for _, deny := range tt.denyBody {
				assert.NotContains(t, body, deny)
			}
		})
	}
}

func TestFilterAssets_RememberedPerOwner(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	fixture.SampleAssets()

	req := features.SignalsRequest(t, http.MethodPost, "/catalog/filter", Signals{Search: "flood"})
	serve(handlers.FilterAssets, features.RequestWithIdentity(req, features.Owner()))

	page := serve(handlers.CatalogPage,
		features.RequestWithIdentity(httptest.NewRequest(http.MethodGet, "/", nil), features.Owner()))
	assert.Contains(t, page.Body.String(), "Showing 1 of 4 assets")

	other := serve(handlers.CatalogPage,
		features.RequestWithIdentity(httptest.NewRequest(http.MethodGet, "/", nil), session.Identity{OwnerID: "someone-else"}))
	assert.Contains(t, other.Body.String(), "Showing 4 of 4 assets")
}

func TestFilterAssets_BadSignals(t *testing.T) {
	handlers, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/catalog/filter", strings.NewReader("{not json"))
	rec := serve(handlers.FilterAssets, features.RequestWithIdentity(req, features.Owner()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Mutation Tests
// =============================================================================

func TestCreateAsset(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	policy, _, _, _ := fixture.SampleAssets()

	updates, unsubscribe := fixture.Bus.Subscribe()
	defer unsubscribe()

	signals := map[string]any{
		"search": "",
		"form": map[string]any{
			"type":        "Claim",
			"name":        "Windstorm",
			"claimAmount": "2500.50",
			"status":      "New",
			"policyId":    policy.ID,
		},
	}
	req := features.SignalsRequest(t, http.MethodPost, "/catalog/assets", signals)
	rec := serve(handlers.CreateAsset, features.RequestWithIdentity(req, features.Owner()))

	body := rec.Body.String()
	assert.Contains(t, body, "Asset created successfully")
	assert.Contains(t, body, "Windstorm")
	assert.Contains(t, body, `<div id="asset-form"></div>`)
	assert.Equal(t, 5, countAssets(t, fixture))

	select {
	case e := <-updates:
		assert.Equal(t, events.Created, e.Type)
		created, err := fixture.Service.Get(context.Background(), e.AssetID)
		require.NoError(t, err)
		assert.Equal(t, "Windstorm", created.Name)
		assert.Equal(t, features.TestOwner, created.OwnerID)
		assert.Equal(t, "2024-06-01T12:00:00Z", created.CreatedAt)
		c, ok := created.AsClaim()
		require.True(t, ok)
		assert.Equal(t, "2500.5", c.Amount.String())
	case <-time.After(time.Second):
		t.Fatal("expected a created event")
	}
}

func TestCreateAsset_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		identity session.Identity
		form     map[string]any
		wantBody string
	}{
		{
			name:     "missing name",
			identity: features.Owner(),
			form:     map[string]any{"type": "Policy", "name": "  "},
			wantBody: "name: required",
		},
		{
			name:     "unknown kind",
			identity: features.Owner(),
			form:     map[string]any{"type": "Dataset", "name": "X"},
			wantBody: "type: oneof",
		},
		{
			name:     "amount is not a number",
			identity: features.Owner(),
			form:     map[string]any{"type": "Claim", "name": "X", "claimAmount": "lots"},
			wantBody: "claimAmount: number",
		},
		{
			name:     "negative amount",
			identity: features.Owner(),
			form:     map[string]any{"type": "Claim", "name": "X", "claimAmount": -5},
			wantBody: "claimAmount: gte",
		},
		{
			name:     "view mode",
			identity: session.Identity{OwnerID: features.TestOwner, ViewMode: true},
			form:     map[string]any{"type": "Policy", "name": "X"},
			wantBody: core.ErrReadOnly.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers, fixture := setupTestHandlers(t)

			req := features.SignalsRequest(t, http.MethodPost, "/catalog/assets", map[string]any{"form": tt.form})
			rec := serve(handlers.CreateAsset, features.RequestWithIdentity(req, tt.identity))

			body := rec.Body.String()
			assert.Contains(t, body, tt.wantBody)
			assert.Contains(t, body, "toast-error")
			assert.Equal(t, 0, countAssets(t, fixture))
		})
	}
}

func TestUpdateAsset(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	policy, hail, _, _ := fixture.SampleAssets()

	form := map[string]any{
		"type":        "Claim",
		"name":        "Hail Damage (revised)",
		"claimAmount": 6500,
		"status":      "Paid",
		"policyId":    policy.ID,
	}
	req := features.SignalsRequest(t, http.MethodPut, "/catalog/assets/"+hail.ID, map[string]any{"form": form})
	req = features.RequestWithPathParam(req, "id", hail.ID)
	rec := serve(handlers.UpdateAsset, features.RequestWithIdentity(req, session.Identity{OwnerID: "editor"}))

	assert.Contains(t, rec.Body.String(), "Asset updated successfully")

	updated, err := fixture.Service.Get(context.Background(), hail.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hail Damage (revised)", updated.Name)
	assert.Equal(t, hail.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "editor", updated.OwnerID)
	c, ok := updated.AsClaim()
	require.True(t, ok)
	assert.Equal(t, core.ClaimStatusPaid, c.Status)
	assert.Equal(t, "6500", c.Amount.String())
}

func TestUpdateAsset_Rejected(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	_, hail, _, _ := fixture.SampleAssets()

	tests := []struct {
		name     string
		id       string
		form     map[string]any
		wantBody string
	}{
		{"kind change", hail.ID, map[string]any{"type": "Policy", "name": "Now a policy"}, core.ErrKindImmutable.Error()},
		{"missing asset", "missing", map[string]any{"type": "Policy", "name": "Ghost"}, core.ErrNotFound.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := features.SignalsRequest(t, http.MethodPut, "/catalog/assets/"+tt.id, map[string]any{"form": tt.form})
			req = features.RequestWithPathParam(req, "id", tt.id)
			rec := serve(handlers.UpdateAsset, features.RequestWithIdentity(req, features.Owner()))

			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}

	unchanged, err := fixture.Service.Get(context.Background(), hail.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hail Damage", unchanged.Name)
}

func TestDeleteAsset(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	_, _, flood, _ := fixture.SampleAssets()

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodDelete, "/catalog/assets/"+flood.ID, nil), "id", flood.ID)
	rec := serve(handlers.DeleteAsset, features.RequestWithIdentity(req, features.Owner()))

	body := rec.Body.String()
	assert.Contains(t, body, "Asset deleted")
	assert.NotContains(t, body, "Basement Flood")
	assert.Equal(t, 3, countAssets(t, fixture))

	// Deleting again reports the missing asset.
	req = features.RequestWithPathParam(httptest.NewRequest(http.MethodDelete, "/catalog/assets/"+flood.ID, nil), "id", flood.ID)
	rec = serve(handlers.DeleteAsset, features.RequestWithIdentity(req, features.Owner()))
	assert.Contains(t, rec.Body.String(), core.ErrNotFound.Error())
}

func TestDeleteAsset_ViewMode(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	policy, _, _, _ := fixture.SampleAssets()

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodDelete, "/catalog/assets/"+policy.ID, nil), "id", policy.ID)
	rec := serve(handlers.DeleteAsset, features.RequestWithIdentity(req, session.Identity{OwnerID: features.TestOwner, ViewMode: true}))

	assert.Contains(t, rec.Body.String(), core.ErrReadOnly.Error())
	assert.Equal(t, 4, countAssets(t, fixture))
}

// =============================================================================
// Form Tests
// =============================================================================

func TestEditAssetForm(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	_, hail, _, _ := fixture.SampleAssets()

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodGet, "/catalog/assets/"+hail.ID+"/edit", nil), "id", hail.ID)
	rec := serve(handlers.EditAssetForm, features.RequestWithIdentity(req, features.Owner()))

	body := rec.Body.String()
	assert.Contains(t, body, `id="asset-form"`)
	assert.Contains(t, body, "Edit Claim")
	assert.Contains(t, body, "Hail Damage")
	assert.Contains(t, body, "Homeowners Policy")
	assert.Contains(t, body, "/catalog/assets/"+hail.ID)
	assert.Contains(t, body, " disabled")
}

func TestEditAssetForm_Missing(t *testing.T) {
	handlers, _ := setupTestHandlers(t)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodGet, "/catalog/assets/nope/edit", nil), "id", "nope")
	rec := serve(handlers.EditAssetForm, features.RequestWithIdentity(req, features.Owner()))

	assert.Contains(t, rec.Body.String(), core.ErrNotFound.Error())
}

func TestNewAssetForm(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	fixture.SampleAssets()

	req := features.RequestWithIdentity(httptest.NewRequest(http.MethodGet, "/catalog/form/new", nil), features.Owner())
	rec := serve(handlers.NewAssetForm, req)

	body := rec.Body.String()
	assert.Contains(t, body, "New Asset")
	assert.Contains(t, body, "@post('/catalog/assets')")
	assert.Contains(t, body, "Basement Flood", "claims are offered as model sources")

	closed := serve(handlers.CloseForm, httptest.NewRequest(http.MethodGet, "/catalog/form/close", nil))
	assert.Contains(t, closed.Body.String(), `<div id="asset-form"></div>`)
}

// =============================================================================
// Session Tests
// =============================================================================

func TestToggleViewMode(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)

	req := features.RequestWithIdentity(httptest.NewRequest(http.MethodPost, "/session/view-mode", nil), features.Owner())
	rec := serve(handlers.ToggleViewMode, req)

	assert.Contains(t, rec.Body.String(), "window.location.reload()")
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	id, err := session.Load(fixture.SessionStore, httptest.NewRecorder(), next)
	require.NoError(t, err)
	assert.True(t, id.ViewMode)
}

// =============================================================================
// CatalogUpdates Tests - SSE endpoint
// =============================================================================

func TestCatalogUpdates(t *testing.T) {
	tests := []struct {
		name          string
		publish       bool
		wantMinEvents int
	}{
		{name: "sends nothing without changes", publish: false, wantMinEvents: 0},
		{name: "re-renders the list on change", publish: true, wantMinEvents: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers, fixture := setupTestHandlers(t)
			fixture.SampleAssets()

			req := httptest.NewRequest(http.MethodGet, "/catalog/updates", nil)
			req = features.RequestWithIdentity(req, features.Owner())
			req = features.RequestWithTimeout(t, req, 300*time.Millisecond)
			rec := httptest.NewRecorder()

			done := make(chan struct{})
			go func() {
				handlers.CatalogUpdates(rec, req)
				close(done)
			}()

			if tt.publish {
				require.Eventually(t, func() bool { return fixture.Bus.Subscribers() > 0 },
					time.Second, 10*time.Millisecond)
				require.NoError(t, fixture.Bus.Publish(context.Background(), events.Event{Type: events.Reloaded}))
			}
			<-done

			body := rec.Body.String()
			eventCount := strings.Count(body, "event:")
			if tt.wantMinEvents == 0 {
				assert.Equal(t, 0, eventCount)
				return
			}
			assert.GreaterOrEqual(t, eventCount, tt.wantMinEvents)
			assert.Contains(t, body, "catalog-list")
			assert.Contains(t, body, "Hail Damage")
		})
	}
}
