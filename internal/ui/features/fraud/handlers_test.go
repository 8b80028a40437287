package fraud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/ui/features"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Service, false), fixture
}

func TestFraudPage(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	fixture.SampleAssets()

	req := features.RequestWithIdentity(httptest.NewRequest(http.MethodGet, "/fraud", nil), features.Owner())
	rec := httptest.NewRecorder()
	handlers.FraudPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"data-init",
		"/fraud/updates",
		`id="fraud-report"`,
		"50.0%",
		`class="stat alert"`,
		"Claim amount exceeds $5,000",
		"Claim was filed within 90 days of policy creation",
		"Homeowners Policy",
	} {
		assert.Contains(t, body, want)
	}
	assert.Equal(t, 1, strings.Count(body, `badge suspicious`))
	assert.Equal(t, 1, strings.Count(body, `badge ok`))
}

func TestFraudPage_NoClaims(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	fixture.Create(catalog.Draft{Kind: core.KindPolicy, Name: "Lonely Policy"})

	rec := httptest.NewRecorder()
	handlers.FraudPage(rec, httptest.NewRequest(http.MethodGet, "/fraud", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "No claims to evaluate.")
	assert.Contains(t, body, ">0%<")
	assert.NotContains(t, body, `class="stat alert"`)
}

func TestNewReport_UnresolvedPolicy(t *testing.T) {
	claim := core.NewClaim("Big", decimal.NewFromInt(9000), core.ClaimStatusNew, "missing")
	claim.ID = "c1"
	claim.CreatedAt = "2024-01-02T00:00:00Z"

	report := newReport([]core.Asset{claim})
	require.Len(t, report.Claims, 1)
	assert.False(t, report.Claims[0].Suspicious)
	assert.Empty(t, report.Claims[0].PolicyName)
	assert.Equal(t, "0.0", report.Rate)
	assert.False(t, report.Elevated)
}

func TestFraudUpdates(t *testing.T) {
	handlers, fixture := setupTestHandlers(t)
	policy, _, _, _ := fixture.SampleAssets()

	req := features.RequestWithTimeout(t, httptest.NewRequest(http.MethodGet, "/fraud/updates", nil), 300*time.Millisecond)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handlers.FraudUpdates(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return fixture.Bus.Subscribers() > 0 }, time.Second, 10*time.Millisecond)
	_, err := fixture.Service.Create(context.Background(), features.TestOwner, catalog.Draft{
		Kind:        core.KindClaim,
		Name:        "Roof Collapse",
		ClaimAmount: decimal.NewFromInt(8000),
		PolicyID:    policy.ID,
		CreatedAt:   "2024-01-15T00:00:00Z",
	})
	require.NoError(t, err)
	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1)
	assert.Contains(t, body, "Roof Collapse")
	assert.Contains(t, body, "66.7%")
}
