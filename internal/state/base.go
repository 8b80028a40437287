package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// assetColumns is the column list shared by every SELECT and INSERT.
const assetColumns = `id, kind, name, description, owner_id, created_at, pii, reg_tag,
	data_kind, claim_amount, claim_status, policy_id, source_claim_ids`

// baseSQLStore implements the database/sql parts of core.Store.
// Queries are written with "?" placeholders and rebound for numbered dialects.
type baseSQLStore struct {
	DB     *sql.DB
	Logger *slog.Logger

	// numbered selects $1, $2... placeholders instead of ?.
	numbered bool
}

var errNotOpened = errors.New("database not opened")

// Close closes the database connection.
func (b *baseSQLStore) Close() error {
	if b.DB != nil {
		b.Logger.Debug("closing store connection")
		return b.DB.Close()
	}
	return nil
}

func (b *baseSQLStore) rebind(query string) string {
	if !b.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ListAssets returns every asset ordered by creation time, then ID.
func (b *baseSQLStore) ListAssets(ctx context.Context) ([]core.Asset, error) {
	if b.DB == nil {
		return nil, errNotOpened
	}

	rows, err := b.DB.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assets := []core.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	// Stored timestamps may mix precisions, so order on the parsed instant.
	slices.SortStableFunc(assets, compareCreated)
	return assets, nil
}

func compareCreated(a, b core.Asset) int {
	ta, errA := a.CreatedTime()
	tb, errB := b.CreatedTime()
	switch {
	case errA == nil && errB == nil && !ta.Equal(tb):
		return ta.Compare(tb)
	case errA != nil && errB == nil:
		return 1
	case errA == nil && errB != nil:
		return -1
	}
	return strings.Compare(a.ID, b.ID)
}

// GetAsset retrieves an asset by ID.
func (b *baseSQLStore) GetAsset(ctx context.Context, id string) (*core.Asset, error) {
	if b.DB == nil {
		return nil, errNotOpened
	}

	row := b.DB.QueryRowContext(ctx, b.rebind(`SELECT `+assetColumns+` FROM assets WHERE id = ?`), id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAsset inserts a, assigning a new UUID when a.ID is empty.
func (b *baseSQLStore) CreateAsset(ctx context.Context, a *core.Asset) error {
	if b.DB == nil {
		return errNotOpened
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	} else {
		var n int
		err := b.DB.QueryRowContext(ctx, b.rebind(`SELECT COUNT(*) FROM assets WHERE id = ?`), a.ID).Scan(&n)
		if err != nil {
			return fmt.Errorf("failed to check asset id: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", core.ErrDuplicateID, a.ID)
		}
	}

	args, err := assetArgs(a)
	if err != nil {
		return err
	}

	_, err = b.DB.ExecContext(ctx, b.rebind(`INSERT INTO assets (`+assetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`), args...)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	b.Logger.Debug("asset created", slog.String("id", a.ID), slog.String("kind", string(a.Kind())))
	return nil
}

// UpdateAsset replaces every column of the asset with a.ID.
func (b *baseSQLStore) UpdateAsset(ctx context.Context, a *core.Asset) error {
	if b.DB == nil {
		return errNotOpened
	}

	args, err := assetArgs(a)
	if err != nil {
		return err
	}
	// id moves from first to last for the WHERE clause.
	args = append(args[1:], args[0])

	result, err := b.DB.ExecContext(ctx, b.rebind(`UPDATE assets SET
		kind = ?, name = ?, description = ?, owner_id = ?, created_at = ?, pii = ?, reg_tag = ?,
		data_kind = ?, claim_amount = ?, claim_status = ?, policy_id = ?, source_claim_ids = ?
		WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, a.ID)
	}

	b.Logger.Debug("asset updated", slog.String("id", a.ID))
	return nil
}

// DeleteAsset removes the asset with id.
func (b *baseSQLStore) DeleteAsset(ctx context.Context, id string) error {
	if b.DB == nil {
		return errNotOpened
	}

	result, err := b.DB.ExecContext(ctx, b.rebind(`DELETE FROM assets WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}

	b.Logger.Debug("asset deleted", slog.String("id", id))
	return nil
}

// assetArgs flattens a into column order.
func assetArgs(a *core.Asset) ([]any, error) {
	if !a.Kind().Valid() {
		return nil, fmt.Errorf("asset %q has no valid kind", a.ID)
	}

	var dataKind, amount, status, policyID, sources sql.NullString
	switch p := a.Payload.(type) {
	case core.PolicyData:
		dataKind = nullString(string(p.DataKind))
	case core.ClaimData:
		amount = nullString(p.Amount.String())
		status = nullString(string(p.Status))
		policyID = sql.NullString{String: p.PolicyID, Valid: true}
	case core.ModelData:
		dataKind = nullString(string(p.DataKind))
		ids := p.SourceClaimIDs
		if ids == nil {
			ids = []string{}
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to encode source claim ids: %w", err)
		}
		sources = nullString(string(raw))
	}

	createdAt := a.CreatedAt
	if createdAt == "" {
		createdAt = core.FormatTimestamp(time.Now())
		a.CreatedAt = createdAt
	}

	return []any{
		a.ID, string(a.Kind()), a.Name, a.Description, a.OwnerID, createdAt, a.PII,
		string(a.RegTag.OrNone()), dataKind, amount, status, policyID, sources,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (core.Asset, error) {
	var (
		a                                          core.Asset
		kind, regTag                               string
		dataKind, amount, status, policyID, source sql.NullString
	)
	err := row.Scan(&a.ID, &kind, &a.Name, &a.Description, &a.OwnerID, &a.CreatedAt, &a.PII,
		&regTag, &dataKind, &amount, &status, &policyID, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return a, err
	}
	if err != nil {
		return a, fmt.Errorf("failed to scan asset: %w", err)
	}
	a.RegTag = core.RegTag(regTag).OrNone()

	switch core.AssetKind(kind) {
	case core.KindPolicy:
		a.Payload = core.PolicyData{DataKind: core.DataKindRecord}
	case core.KindClaim:
		c := core.ClaimData{Status: core.ClaimStatus(status.String), PolicyID: policyID.String}
		if amount.Valid {
			c.Amount, err = decimal.NewFromString(amount.String)
			if err != nil {
				return a, fmt.Errorf("asset %s: invalid claim amount %q: %w", a.ID, amount.String, err)
			}
		}
		a.Payload = c
	case core.KindModel:
		m := core.ModelData{DataKind: core.DataKindResult}
		if source.Valid && source.String != "" {
			if err := json.Unmarshal([]byte(source.String), &m.SourceClaimIDs); err != nil {
				return a, fmt.Errorf("asset %s: invalid source claim ids: %w", a.ID, err)
			}
		}
		a.Payload = m
	default:
		return a, fmt.Errorf("asset %s: unknown kind %q", a.ID, kind)
	}
	return a, nil
}
