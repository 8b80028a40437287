package assets

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/assets/pages"
	"github.com/leapstack-labs/metacatalog/internal/ui/features/common"
	"github.com/leapstack-labs/metacatalog/internal/ui/session"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Handlers provides HTTP handlers for the catalog feature.
type Handlers struct {
	service      *catalog.Service
	sessionStore sessions.Store
	isDev        bool
	logger       *slog.Logger

	// filters remembers the last filter of each owner so that live updates
	// re-render the list the browser is looking at.
	mu      sync.Mutex
	filters map[string]catalog.Filter
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *catalog.Service, sessionStore sessions.Store, isDev bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		service:      svc,
		sessionStore: sessionStore,
		isDev:        isDev,
		logger:       logger,
		filters:      make(map[string]catalog.Filter),
	}
}

// CatalogPage renders the catalog page with the owner's current filter.
func (h *Handlers) CatalogPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := session.FromContext(ctx)
	filter := h.filterFor(id.OwnerID)

	list, err := h.buildList(ctx, filter, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	signals, err := common.JSON(filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := pages.PageData{
		Shell:   common.NewShell("Catalog", "/", "/catalog/updates", id, h.service.ReadOnly(), h.isDev),
		Signals: signals,
		List:    list,
	}
	if err := pages.CatalogPage(data).Render(ctx, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CatalogUpdates is the long-lived SSE endpoint of the catalog page.
// The list is re-rendered with the owner's filter on every change.
func (h *Handlers) CatalogUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := session.FromContext(ctx)
	sse := datastar.NewSSE(w, r)

	common.Stream(ctx, sse, h.service.Bus(), func() error {
		return h.sendList(ctx, sse, id)
	})
}

// FilterAssets stores the filter from the request signals and re-renders the list.
func (h *Handlers) FilterAssets(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	id := session.FromContext(ctx)
	h.setFilter(id.OwnerID, signals.Filter())

	sse := datastar.NewSSE(w, r)
	if err := h.sendList(ctx, sse, id); err != nil {
		h.fail(sse, err, "Failed to load assets")
	}
}

// NewAssetForm opens an empty editor.
func (h *Handlers) NewAssetForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := session.FromContext(ctx)
	sse := datastar.NewSSE(w, r)

	if h.readOnly(id) {
		h.fail(sse, core.ErrReadOnly, "")
		return
	}

	draft := catalog.Draft{Kind: core.KindPolicy, RegTag: core.RegTagNone, Status: core.ClaimStatusNew}
	if err := h.sendForm(ctx, sse, pages.FormData{}, draft); err != nil {
		h.fail(sse, err, "Failed to open the editor")
	}
}

// EditAssetForm opens the editor on an existing asset.
func (h *Handlers) EditAssetForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := session.FromContext(ctx)
	assetID := chi.URLParam(r, "id")
	sse := datastar.NewSSE(w, r)

	if h.readOnly(id) {
		h.fail(sse, core.ErrReadOnly, "")
		return
	}

	asset, err := h.service.Get(ctx, assetID)
	if err != nil {
		h.fail(sse, err, "Failed to load asset")
		return
	}

	form := pages.FormData{Editing: true, ID: asset.ID, Kind: string(asset.Kind())}
	if err := h.sendForm(ctx, sse, form, catalog.DraftFrom(*asset)); err != nil {
		h.fail(sse, err, "Failed to open the editor")
	}
}

// CloseForm empties the editor slot.
func (h *Handlers) CloseForm(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	_ = sse.PatchElementTempl(pages.FormClosed())
}

// CreateAsset creates an asset from the form signals.
func (h *Handlers) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	readErr := datastar.ReadSignals(r, &signals)

	ctx := r.Context()
	id := session.FromContext(ctx)
	sse := datastar.NewSSE(w, r)

	if readErr != nil {
		h.fail(sse, readErr, "Could not read the form")
		return
	}
	if h.readOnly(id) {
		h.fail(sse, core.ErrReadOnly, "")
		return
	}

	draft, err := signals.Form.Draft()
	if err != nil {
		h.fail(sse, err, "")
		return
	}
	if _, err := h.service.Create(ctx, id.OwnerID, draft); err != nil {
		h.fail(sse, err, "Failed to create asset")
		return
	}

	h.afterMutation(ctx, sse, id, "Asset created successfully")
}

// UpdateAsset saves the form signals over an existing asset.
func (h *Handlers) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	readErr := datastar.ReadSignals(r, &signals)

	ctx := r.Context()
	id := session.FromContext(ctx)
	assetID := chi.URLParam(r, "id")
	sse := datastar.NewSSE(w, r)

	if readErr != nil {
		h.fail(sse, readErr, "Could not read the form")
		return
	}
	if h.readOnly(id) {
		h.fail(sse, core.ErrReadOnly, "")
		return
	}

	draft, err := signals.Form.Draft()
	if err != nil {
		h.fail(sse, err, "")
		return
	}
	if _, err := h.service.Update(ctx, assetID, id.OwnerID, draft); err != nil {
		h.fail(sse, err, "Failed to update asset")
		return
	}

	h.afterMutation(ctx, sse, id, "Asset updated successfully")
}

// DeleteAsset removes an asset.
func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := session.FromContext(ctx)
	assetID := chi.URLParam(r, "id")
	sse := datastar.NewSSE(w, r)

	if h.readOnly(id) {
		h.fail(sse, core.ErrReadOnly, "")
		return
	}
	if err := h.service.Delete(ctx, assetID); err != nil {
		h.fail(sse, err, "Failed to delete asset")
		return
	}

	h.afterMutation(ctx, sse, id, "Asset deleted")
}

// ToggleViewMode flips the browser's view mode and reloads the page so every
// panel picks it up.
func (h *Handlers) ToggleViewMode(w http.ResponseWriter, r *http.Request) {
	current := session.FromContext(r.Context())
	_, err := session.SetViewMode(h.sessionStore, w, r, !current.ViewMode)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.fail(sse, err, "Failed to switch view mode")
		return
	}
	_ = sse.ExecuteScript("window.location.reload()")
}

// afterMutation closes the editor, refreshes the list and confirms success.
func (h *Handlers) afterMutation(ctx context.Context, sse *datastar.ServerSentEventGenerator, id session.Identity, message string) {
	_ = sse.PatchElementTempl(pages.FormClosed())
	if err := h.sendList(ctx, sse, id); err != nil {
		_ = sse.ConsoleError(err)
	}
	_ = common.SendToast(sse, common.ToastSuccess, message)
}

// fail reports err to the browser. User errors are shown verbatim; anything
// else is logged and shown as message.
func (h *Handlers) fail(sse *datastar.ServerSentEventGenerator, err error, message string) {
	user := catalog.IsUserError(err)
	if !user {
		h.logger.Error(message, slog.String("error", err.Error()))
	}
	common.SendError(sse, err, message, user || message == "")
}

func (h *Handlers) sendList(ctx context.Context, sse *datastar.ServerSentEventGenerator, id session.Identity) error {
	list, err := h.buildList(ctx, h.filterFor(id.OwnerID), id)
	if err != nil {
		return err
	}
	return sse.PatchElementTempl(pages.CatalogList(list))
}

func (h *Handlers) sendForm(ctx context.Context, sse *datastar.ServerSentEventGenerator, form pages.FormData, draft catalog.Draft) error {
	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		return err
	}
	signals, err := common.JSON(map[string]AssetForm{"form": FormFrom(draft)})
	if err != nil {
		return err
	}
	form.Signals = signals
	form.Options = catalog.OptionsFor(snapshot)
	return sse.PatchElementTempl(pages.AssetForm(form))
}

// buildList assembles the card list for filter. Policy and source names are
// resolved against the full snapshot so filtered-out references still read
// well.
func (h *Handlers) buildList(ctx context.Context, filter catalog.Filter, id session.Identity) (pages.ListData, error) {
	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		return pages.ListData{}, err
	}

	names := make(map[string]string, len(snapshot))
	for _, a := range snapshot {
		names[a.ID] = a.Name
	}

	visible := filter.Apply(snapshot)
	cards := make([]pages.Card, 0, len(visible))
	for _, a := range visible {
		cards = append(cards, newCard(a, names))
	}

	return pages.ListData{
		Assets:   cards,
		Total:    len(snapshot),
		Filtered: !filter.IsZero(),
		ReadOnly: h.readOnly(id),
	}, nil
}

func newCard(a core.Asset, names map[string]string) pages.Card {
	c := pages.Card{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Kind:        string(a.Kind()),
		KindClass:   common.KindClass(a.Kind()),
		RegTag:      string(a.RegTag.OrNone()),
		PII:         a.PII,
		Owner:       common.ShortID(a.OwnerID),
		Created:     common.FormatDate(a.CreatedAt),
	}

	switch p := a.Payload.(type) {
	case core.ClaimData:
		c.IsClaim = true
		c.Amount = common.FormatAmount(p.Amount)
		c.Status = string(p.Status)
		c.PolicyName = names[p.PolicyID]
	case core.ModelData:
		c.IsModel = true
		for _, claimID := range p.SourceClaimIDs {
			if name, ok := names[claimID]; ok {
				c.Sources = append(c.Sources, name)
			}
		}
	}
	return c
}

func (h *Handlers) readOnly(id session.Identity) bool {
	return id.ViewMode || h.service.ReadOnly()
}

func (h *Handlers) filterFor(owner string) catalog.Filter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return normalizeFilter(h.filters[owner])
}

func (h *Handlers) setFilter(owner string, f catalog.Filter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f.IsZero() {
		delete(h.filters, owner)
		return
	}
	h.filters[owner] = f
}
