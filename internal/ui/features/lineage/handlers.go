package lineage

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/lineage"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/common"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/lineage/pages"
	"github.com/leapstack-labs/metacatalog/internal/ui/session"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Handlers provides HTTP handlers for the lineage feature.
type Handlers struct {
	service *catalog.Service
	isDev   bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *catalog.Service, isDev bool) *Handlers {
	return &Handlers{service: svc, isDev: isDev}
}

// LineagePage renders the lineage page.
func (h *Handlers) LineagePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.buildView(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := pages.PageData{
		Shell: common.NewShell("Lineage", "/lineage", "/lineage/updates",
			session.FromContext(ctx), h.service.ReadOnly(), h.isDev),
		View: view,
	}
	if err := pages.LineagePage(data).Render(ctx, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// LineageUpdates is the long-lived SSE endpoint of the lineage page.
// Every change rebuilds the diagram from a fresh snapshot.
func (h *Handlers) LineageUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sse := datastar.NewSSE(w, r)

	common.Stream(ctx, sse, h.service.Bus(), func() error {
		view, err := h.buildView(ctx)
		if err != nil {
			return err
		}
		return sse.PatchElementTempl(pages.Diagram(view))
	})
}

// NodeDetail shows the selected asset with its sources and derived assets.
func (h *Handlers) NodeDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	sse := datastar.NewSSE(w, r)

	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		common.SendError(sse, err, "Failed to load lineage", false)
		return
	}

	detail, ok := lineage.Build(snapshot).Detail(id)
	if !ok {
		common.SendError(sse, core.ErrNotFound, "", true)
		return
	}
	_ = sse.PatchElementTempl(pages.NodeDetail(newDetail(detail)))
}

func (h *Handlers) buildView(ctx context.Context) (pages.ViewData, error) {
	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		return pages.ViewData{}, err
	}
	return newView(lineage.Build(snapshot)), nil
}

func newView(g *lineage.Graph) pages.ViewData {
	view := pages.ViewData{
		Width:      g.Width,
		Height:     g.Height,
		NodeWidth:  lineage.NodeWidth,
		NodeHeight: lineage.NodeHeight,
		Nodes:      make([]pages.NodeView, 0, len(g.Nodes)),
		Edges:      make([]string, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		view.Nodes = append(view.Nodes, pages.NodeView{
			ID:    n.ID,
			Name:  n.Name,
			Label: n.Label,
			Kind:  string(n.Kind),
			Color: common.KindColor(n.Kind),
			X:     n.X,
			Y:     n.Y,
			PII:   n.PII,
		})
	}
	for _, e := range g.Edges {
		if path, ok := g.Path(e); ok {
			view.Edges = append(view.Edges, path)
		}
	}
	return view
}

func newDetail(d lineage.Detail) pages.DetailData {
	out := pages.DetailData{
		ID:          d.Asset.ID,
		Name:        d.Asset.Name,
		Description: d.Asset.Description,
		Kind:        string(d.Asset.Kind()),
		KindClass:   common.KindClass(d.Asset.Kind()),
		RegTag:      string(d.Asset.RegTag.OrNone()),
		PII:         d.Asset.PII,
		Created:     common.FormatDate(d.Asset.CreatedAt),
	}
	if c, ok := d.Asset.AsClaim(); ok {
		out.Amount = common.FormatAmount(c.Amount)
		out.Status = string(c.Status)
	}
	for _, n := range d.Upstream {
		out.Upstream = append(out.Upstream, n.Name)
	}
	for _, n := range d.Downstream {
		out.Downstream = append(out.Downstream, n.Name)
	}
	return out
}
