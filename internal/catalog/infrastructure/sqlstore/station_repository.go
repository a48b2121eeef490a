package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	catalog "asset-catalog/internal/catalog/domain"
)

const stationsTable = "stations"

// StationRepository stores stations.
type StationRepository struct {
	db      DBTX
	dialect Dialect
}

// NewStationRepository constructs a repository.
func NewStationRepository(db DBTX, opts ...Option) *StationRepository {
	o := buildOptions(opts)
	return &StationRepository{db: db, dialect: o.dialect}
}

// Create inserts a station and returns its id.
func (r *StationRepository) Create(ctx context.Context, station catalog.Station) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("station repo: nil db")
	}
	if err := station.Validate(); err != nil {
		return 0, err
	}
	query := r.dialect.rebind(fmt.Sprintf(`
INSERT INTO %s (name, location)
VALUES (?, ?)
RETURNING id`, stationsTable))

	var id int64
	if err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(station.Name), nullString(station.Location)).Scan(&id); err != nil {
		return 0, classify("insert station", err)
	}
	return id, nil
}

// Get loads a station by id.
func (r *StationRepository) Get(ctx context.Context, id int64) (*catalog.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	query := r.dialect.rebind(fmt.Sprintf(`
SELECT id, name, location
FROM %s
WHERE id = ?
LIMIT 1`, stationsTable))

	station, err := scanStation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get station", err)
	}
	return &station, nil
}

// List returns every station ordered by id.
func (r *StationRepository) List(ctx context.Context) ([]catalog.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, name, location
FROM %s
ORDER BY id ASC`, stationsTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("list stations", err)
	}
	defer rows.Close()

	stations := make([]catalog.Station, 0)
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, classify("scan station", err)
		}
		stations = append(stations, station)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list stations", err)
	}
	return stations, nil
}

// Update replaces the patched fields. It reports false when the id is absent.
func (r *StationRepository) Update(ctx context.Context, id int64, patch catalog.StationPatch) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("station repo: nil db")
	}
	if err := patch.Validate(); err != nil {
		return false, err
	}
	if patch.IsEmpty() {
		station, err := r.Get(ctx, id)
		return station != nil, err
	}

	var sets []string
	var args []any
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, nullString(*patch.Location))
	}
	args = append(args, id)

	query := r.dialect.rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", stationsTable, strings.Join(sets, ", ")))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify("update station", err)
	}
	return affected(res)
}

// Delete removes a station. Assets referencing it are left in place.
func (r *StationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("station repo: nil db")
	}
	query := r.dialect.rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", stationsTable))
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, classify("delete station", err)
	}
	return affected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (catalog.Station, error) {
	var (
		station  catalog.Station
		location sql.NullString
	)
	if err := row.Scan(&station.ID, &station.Name, &location); err != nil {
		return catalog.Station{}, err
	}
	station.Location = location.String
	return station, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
