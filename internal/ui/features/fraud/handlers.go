package fraud

import (
	"context"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/fraud"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/common"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/fraud/pages"
	"github.com/leapstack-labs/metacatalog/internal/ui/session"
)

// Handlers provides HTTP handlers for the fraud feature.
type Handlers struct {
	service *catalog.Service
	isDev   bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *catalog.Service, isDev bool) *Handlers {
	return &Handlers{service: svc, isDev: isDev}
}

// FraudPage renders the fraud page.
func (h *Handlers) FraudPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.buildReport(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := pages.PageData{
		Shell: common.NewShell("Fraud", "/fraud", "/fraud/updates",
			session.FromContext(ctx), h.service.ReadOnly(), h.isDev),
		Report: report,
		Rules:  fraud.Rules,
	}
	if err := pages.FraudPage(data).Render(ctx, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// FraudUpdates is the long-lived SSE endpoint of the fraud page.
// Every change re-evaluates all claims.
func (h *Handlers) FraudUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sse := datastar.NewSSE(w, r)

	common.Stream(ctx, sse, h.service.Bus(), func() error {
		report, err := h.buildReport(ctx)
		if err != nil {
			return err
		}
		return sse.PatchElementTempl(pages.Report(report))
	})
}

func (h *Handlers) buildReport(ctx context.Context) (pages.ReportData, error) {
	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		return pages.ReportData{}, err
	}
	return newReport(snapshot), nil
}
