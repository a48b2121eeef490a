package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	catalog "asset-catalog/internal/catalog/domain"

	"github.com/shopspring/decimal"
)

// AssetRepository stores assets of every variant, one table per variant.
type AssetRepository struct {
	db      DBTX
	dialect Dialect
}

// NewAssetRepository constructs a repository.
func NewAssetRepository(db DBTX, opts ...Option) *AssetRepository {
	o := buildOptions(opts)
	return &AssetRepository{db: db, dialect: o.dialect}
}

// columns lists the stored attributes of the variant, without id.
func columns(fs catalog.FieldSet) []string {
	cols := make([]string, 0, 8)
	if fs.HasType {
		cols = append(cols, "type")
	}
	if fs.HasName {
		cols = append(cols, "name")
	}
	return append(cols, "number", "price", "purchase_date", "condition", "employee_name", "station_id")
}

func prefixed(alias string, cols []string) string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = alias + "." + col
	}
	return strings.Join(out, ", ")
}

// Create inserts an asset into its variant's table and returns the new id.
func (r *AssetRepository) Create(ctx context.Context, asset catalog.Asset) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("asset repo: nil db")
	}
	fs, err := asset.Variant.FieldSet()
	if err != nil {
		return 0, err
	}
	if err := asset.Validate(); err != nil {
		return 0, err
	}
	number, err := catalog.NumberArg(fs, asset.Number)
	if err != nil {
		return 0, err
	}

	args := make([]any, 0, 8)
	if fs.HasType {
		args = append(args, asset.Type)
	}
	if fs.HasName {
		args = append(args, asset.Name)
	}
	args = append(args,
		number,
		asset.Price,
		asset.PurchaseDate,
		asset.Condition,
		asset.EmployeeName,
		nullInt64(asset.StationID),
	)

	cols := columns(fs)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := r.dialect.rebind(fmt.Sprintf(`
INSERT INTO %s (%s)
VALUES (%s)
RETURNING id`, fs.Table, strings.Join(cols, ", "), placeholders))

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, classify("insert "+fs.Table, err)
	}
	return id, nil
}

// Get loads one asset.
func (r *AssetRepository) Get(ctx context.Context, variant catalog.Variant, id int64) (*catalog.Asset, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	fs, err := variant.FieldSet()
	if err != nil {
		return nil, err
	}
	query := r.dialect.rebind(fmt.Sprintf(`
SELECT a.id, %s
FROM %s a
WHERE a.id = ?
LIMIT 1`, prefixed("a", columns(fs)), fs.Table))

	var asset catalog.Asset
	scan := newAssetScan(fs, &asset)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(scan.dest(fs)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get "+fs.Table, err)
	}
	scan.finish()
	return &asset, nil
}

// ListWithStationName returns every asset of the variant left-joined with its
// station's name. Assets without a resolvable station are kept.
func (r *AssetRepository) ListWithStationName(ctx context.Context, variant catalog.Variant) ([]catalog.AssetListing, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	fs, err := variant.FieldSet()
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT a.id, %s, s.name
FROM %s a
LEFT JOIN %s s ON s.id = a.station_id`, prefixed("a", columns(fs)), fs.Table, stationsTable)
	if fs.OrderByID {
		query += "\nORDER BY a.id ASC"
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("list "+fs.Table, err)
	}
	defer rows.Close()

	listings := make([]catalog.AssetListing, 0)
	for rows.Next() {
		var (
			listing     catalog.AssetListing
			stationName sql.NullString
		)
		scan := newAssetScan(fs, &listing.Asset)
		if err := rows.Scan(scan.dest(fs, &stationName)...); err != nil {
			return nil, classify("scan "+fs.Table, err)
		}
		scan.finish()
		listing.StationName = stationName.String
		listing.StationKnown = stationName.Valid
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list "+fs.Table, err)
	}
	return listings, nil
}

// Update replaces the patched fields. It reports false when the id is absent.
func (r *AssetRepository) Update(ctx context.Context, variant catalog.Variant, id int64, patch catalog.AssetPatch) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("asset repo: nil db")
	}
	fs, err := variant.FieldSet()
	if err != nil {
		return false, err
	}
	if err := patch.Validate(fs); err != nil {
		return false, err
	}
	if patch.IsEmpty() {
		asset, err := r.Get(ctx, variant, id)
		return asset != nil, err
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, value any) {
		sets = append(sets, col+" = ?")
		args = append(args, value)
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Number != nil {
		number, err := catalog.NumberArg(fs, *patch.Number)
		if err != nil {
			return false, err
		}
		set("number", number)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.PurchaseDate != nil {
		set("purchase_date", *patch.PurchaseDate)
	}
	if patch.Condition != nil {
		set("condition", *patch.Condition)
	}
	if patch.EmployeeName != nil {
		set("employee_name", *patch.EmployeeName)
	}
	if patch.StationID != nil {
		set("station_id", *patch.StationID)
	}
	if patch.ClearStation {
		set("station_id", nil)
	}
	args = append(args, id)

	query := r.dialect.rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", fs.Table, strings.Join(sets, ", ")))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify("update "+fs.Table, err)
	}
	return affected(res)
}

// Delete removes one asset. It reports false when the id is absent.
func (r *AssetRepository) Delete(ctx context.Context, variant catalog.Variant, id int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("asset repo: nil db")
	}
	fs, err := variant.FieldSet()
	if err != nil {
		return false, err
	}
	query := r.dialect.rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", fs.Table))
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, classify("delete "+fs.Table, err)
	}
	return affected(res)
}

// CountsByStation counts assets per station name for every variant. Assets
// with a null or dangling station are not counted. The four per-variant
// aggregates run as one statement, so a call reads a single snapshot.
func (r *AssetRepository) CountsByStation(ctx context.Context) (catalog.AssetCounts, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	parts := make([]string, 0, 4)
	for _, v := range catalog.Variants() {
		fs, _ := v.FieldSet()
		parts = append(parts, fmt.Sprintf(`
SELECT '%s' AS variant, s.name AS station_name, COUNT(*) AS total
FROM %s a
JOIN %s s ON s.id = a.station_id
GROUP BY s.name`, v, fs.Table, stationsTable))
	}
	query := strings.Join(parts, "\nUNION ALL") + "\nORDER BY variant, station_name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("count assets by station", err)
	}
	defer rows.Close()

	counts := catalog.NewAssetCounts()
	for rows.Next() {
		var (
			variant string
			entry   catalog.StationCount
		)
		if err := rows.Scan(&variant, &entry.StationName, &entry.Count); err != nil {
			return nil, classify("scan station count", err)
		}
		v := catalog.Variant(variant)
		counts[v] = append(counts[v], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("count assets by station", err)
	}
	return counts, nil
}

// Totals counts every asset per variant, including unassigned ones.
func (r *AssetRepository) Totals(ctx context.Context) (catalog.AssetTotals, error) {
	totals := catalog.NewAssetTotals()
	if r == nil || r.db == nil {
		return totals, errors.New("asset repo: nil db")
	}
	parts := make([]string, 0, 4)
	for _, v := range catalog.Variants() {
		fs, _ := v.FieldSet()
		parts = append(parts, fmt.Sprintf("SELECT '%s' AS variant, COUNT(*) AS total FROM %s", v, fs.Table))
	}
	rows, err := r.db.QueryContext(ctx, strings.Join(parts, "\nUNION ALL\n"))
	if err != nil {
		return totals, classify("count assets", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			variant string
			n       int64
		)
		if err := rows.Scan(&variant, &n); err != nil {
			return totals, classify("scan asset total", err)
		}
		totals.Add(catalog.Variant(variant), n)
	}
	if err := rows.Err(); err != nil {
		return totals, classify("count assets", err)
	}
	return totals, nil
}

// assetScan collects nullable columns before they are copied into an Asset.
type assetScan struct {
	asset        *catalog.Asset
	typ          sql.NullString
	name         sql.NullString
	number       sql.NullString
	price        decimal.NullDecimal
	condition    sql.NullString
	employeeName sql.NullString
	stationID    sql.NullInt64
}

// newAssetScan prepares destinations for "id, columns(fs)" into asset.
func newAssetScan(fs catalog.FieldSet, asset *catalog.Asset) *assetScan {
	asset.Variant = fs.Variant
	return &assetScan{asset: asset}
}

func (s *assetScan) dest(fs catalog.FieldSet, extra ...any) []any {
	dest := []any{&s.asset.ID}
	if fs.HasType {
		dest = append(dest, &s.typ)
	}
	if fs.HasName {
		dest = append(dest, &s.name)
	}
	dest = append(dest,
		&s.number,
		&s.price,
		&s.asset.PurchaseDate,
		&s.condition,
		&s.employeeName,
		&s.stationID,
	)
	return append(dest, extra...)
}

func (s *assetScan) finish() {
	s.asset.Type = s.typ.String
	s.asset.Name = s.name.String
	s.asset.Number = s.number.String
	s.asset.Price = s.price.Decimal
	s.asset.Condition = s.condition.String
	s.asset.EmployeeName = s.employeeName.String
	s.asset.StationID = nil
	if s.stationID.Valid {
		id := s.stationID.Int64
		s.asset.StationID = &id
	}
}
