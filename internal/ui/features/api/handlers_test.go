package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metacatalog/internal/ui/features"
)

func setupRouter(t *testing.T) (http.Handler, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, fixture.Service, nil))
	return r, fixture
}

func get(t *testing.T, h http.Handler, target string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestListAssets(t *testing.T) {
	h, fixture := setupRouter(t)
	fixture.SampleAssets()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"Homeowners Policy", "Hail Damage", "Basement Flood", "Claim Severity Model"}},
		{"search", "?search=flood", []string{"Basement Flood"}},
		{"kind", "?kind=Claim", []string{"Hail Damage", "Basement Flood"}},
		{"reg tag", "?regTag=GDPR", []string{"Homeowners Policy"}},
		{"kind all", "?kind=all&regTag=all", []string{"Homeowners Policy", "Hail Damage", "Basement Flood", "Claim Severity Model"}},
		{"none", "?search=zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []map[string]any
			assert.Equal(t, http.StatusOK, get(t, h, "/api/assets"+tt.query, &got))

			names := make([]string, 0, len(got))
			for _, a := range got {
				names = append(names, a["name"].(string))
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGetAsset(t *testing.T) {
	h, fixture := setupRouter(t)
	_, hail, _, _ := fixture.SampleAssets()

	var got map[string]any
	assert.Equal(t, http.StatusOK, get(t, h, "/api/assets/"+hail.ID, &got))
	assert.Equal(t, "Claim", got["type"])
	assert.Equal(t, float64(6000), got["claimAmount"])

	var missing map[string]string
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/assets/nope", &missing))
	assert.Contains(t, missing["error"], "asset not found")
}

func TestLineage(t *testing.T) {
	h, fixture := setupRouter(t)
	policy, hail, _, _ := fixture.SampleAssets()

	var got struct {
		Nodes []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			X    int    `json:"x"`
			PII  bool   `json:"piiTag"`
		} `json:"nodes"`
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"edges"`
		Width int `json:"width"`
	}
	assert.Equal(t, http.StatusOK, get(t, h, "/api/lineage", &got))

	require.Len(t, got.Nodes, 4)
	assert.Equal(t, policy.ID, got.Nodes[0].ID)
	assert.True(t, got.Nodes[0].PII)
	assert.Equal(t, 50, got.Nodes[0].X)
	require.Len(t, got.Edges, 4)
	assert.Equal(t, policy.ID, got.Edges[0].Source)
	assert.Equal(t, hail.ID, got.Edges[0].Target)
	assert.Equal(t, 760, got.Width)
}

func TestFraud(t *testing.T) {
	h, fixture := setupRouter(t)
	fixture.SampleAssets()

	var got struct {
		Claims []struct {
			Suspicious bool `json:"isSuspicious"`
		} `json:"claims"`
		Total      int      `json:"totalClaims"`
		Suspicious int      `json:"suspiciousClaims"`
		Rate       float64  `json:"fraudPercentage"`
		Elevated   bool     `json:"elevated"`
		Rules      []string `json:"rules"`
	}
	assert.Equal(t, http.StatusOK, get(t, h, "/api/fraud", &got))

	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Suspicious)
	assert.InDelta(t, 50.0, got.Rate, 0.001)
	assert.True(t, got.Elevated)
	require.Len(t, got.Claims, 2)
	assert.True(t, got.Claims[0].Suspicious)
	assert.False(t, got.Claims[1].Suspicious)
	assert.Len(t, got.Rules, 2)
}
