// Package catalog implements the asset editor: filtered listing, validated
// create/update/delete, and change publication for live views.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/leapstack-labs/metacatalog/internal/events"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Service mediates every read and write of the asset collection.
type Service struct {
	store    core.Store
	bus      events.Bus
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
	readOnly atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithBus sets the bus that receives change events.
func WithBus(bus events.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithClock overrides the clock used to stamp creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithReadOnly starts the service in view mode.
func WithReadOnly(readOnly bool) Option {
	return func(s *Service) { s.readOnly.Store(readOnly) }
}

// NewService creates a Service over store.
func NewService(store core.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		bus:      events.Discard{},
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.bus == nil {
		s.bus = events.Discard{}
	}
	return s
}

// Bus returns the bus the service publishes to.
func (s *Service) Bus() events.Bus {
	return s.bus
}

// ReadOnly reports whether mutations are currently refused.
func (s *Service) ReadOnly() bool {
	return s.readOnly.Load()
}

// SetReadOnly switches view mode on or off.
func (s *Service) SetReadOnly(readOnly bool) {
	s.readOnly.Store(readOnly)
}

// Snapshot returns the full collection in store order.
func (s *Service) Snapshot(ctx context.Context) ([]core.Asset, error) {
	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	return assets, nil
}

// List returns the assets matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]core.Asset, error) {
	assets, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(assets), nil
}

// Get returns one asset.
func (s *Service) Get(ctx context.Context, id string) (*core.Asset, error) {
	return s.store.GetAsset(ctx, id)
}

// Validate checks d without touching the store.
func (s *Service) Validate(d Draft) error {
	d = d.normalize()
	if err := s.validate.Struct(d); err != nil {
		return validationError(err)
	}
	return nil
}

// Create validates d and stores a new asset owned by owner.
// The creation time is d.CreatedAt when set, otherwise now.
func (s *Service) Create(ctx context.Context, owner string, d Draft) (*core.Asset, error) {
	if s.ReadOnly() {
		return nil, core.ErrReadOnly
	}

	d = d.normalize()
	if err := s.validate.Struct(d); err != nil {
		return nil, validationError(err)
	}

	a := d.asset()
	a.OwnerID = owner
	a.CreatedAt = d.CreatedAt
	if a.CreatedAt == "" {
		a.CreatedAt = core.FormatTimestamp(s.now())
	}

	if err := s.store.CreateAsset(ctx, &a); err != nil {
		return nil, err
	}

	s.logger.Info("asset created",
		slog.String("id", a.ID),
		slog.String("kind", string(a.Kind())),
		slog.String("owner", owner))
	s.publish(ctx, events.Created, a.ID)
	return &a, nil
}

// Update replaces the editable fields of the asset with id.
// The kind and creation time never change; the asset is re-owned by owner
// when owner is non-empty.
func (s *Service) Update(ctx context.Context, id, owner string, d Draft) (*core.Asset, error) {
	if s.ReadOnly() {
		return nil, core.ErrReadOnly
	}

	existing, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Kind == "" {
		d.Kind = existing.Kind()
	}
	if d.Kind != existing.Kind() {
		return nil, fmt.Errorf("%w: %s is a %s", core.ErrKindImmutable, id, existing.Kind())
	}

	d = d.normalize()
	d.CreatedAt = ""
	if err := s.validate.Struct(d); err != nil {
		return nil, validationError(err)
	}

	a := d.asset()
	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	a.OwnerID = existing.OwnerID
	if owner != "" {
		a.OwnerID = owner
	}

	if err := s.store.UpdateAsset(ctx, &a); err != nil {
		return nil, err
	}

	s.logger.Info("asset updated", slog.String("id", a.ID), slog.String("owner", a.OwnerID))
	s.publish(ctx, events.Updated, a.ID)
	return &a, nil
}

// Delete removes the asset with id. References to it are left dangling.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.ReadOnly() {
		return core.ErrReadOnly
	}
	if err := s.store.DeleteAsset(ctx, id); err != nil {
		return err
	}

	s.logger.Info("asset deleted", slog.String("id", id))
	s.publish(ctx, events.Deleted, id)
	return nil
}

// Reloaded announces a bulk change, such as a re-applied seed file.
func (s *Service) Reloaded(ctx context.Context) {
	s.publish(ctx, events.Reloaded, "")
}

func (s *Service) publish(ctx context.Context, t events.Type, id string) {
	err := s.bus.Publish(ctx, events.Event{Type: t, AssetID: id, At: s.now().UTC()})
	if err != nil {
		s.logger.Warn("failed to publish change",
			slog.String("type", string(t)),
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
}

// IsUserError reports whether err should be shown to the person who caused
// it rather than treated as an internal failure.
func IsUserError(err error) bool {
	var ve *core.ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrReadOnly) ||
		errors.Is(err, core.ErrKindImmutable) ||
		errors.Is(err, core.ErrDuplicateID)
}
