// Package sqlstore persists the asset catalog in SQLite (a single local file)
// or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	catalog "asset-catalog/internal/catalog/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL engine.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect accepts "sqlite" or "postgres" (also "pgx" and "postgresql").
func ParseDialect(value string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("sqlstore: unknown driver %q", value)
	}
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// rebind turns ? placeholders into the dialect's form.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle and its schema.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store, applies migrations and verifies every catalog
// table is reachable. For SQLite, source is a file path; for Postgres, a DSN.
func Open(ctx context.Context, dialect Dialect, source string) (*Store, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty storage source", catalog.ErrStorageUnavailable)
	}
	dsn := source
	if dialect == DialectSQLite {
		cleanPath := filepath.Clean(source)
		if dir := filepath.Dir(cleanPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: create data dir: %v", catalog.ErrStorageUnavailable, err)
			}
		}
		dsn = cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", catalog.ErrStorageUnavailable, dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", catalog.ErrStorageUnavailable, dialect, err)
	}

	store := &Store{db: db, dialect: dialect}
	if err := applyMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", catalog.ErrStorageUnavailable, err)
	}
	if err := store.Check(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect returns the engine in use.
func (s *Store) Dialect() Dialect { return s.dialect }

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Tables lists the catalog tables.
func Tables() []string {
	tables := []string{stationsTable}
	for _, v := range catalog.Variants() {
		fs, _ := v.FieldSet()
		tables = append(tables, fs.Table)
	}
	return tables
}

// Check verifies every catalog table can be queried.
func (s *Store) Check(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: nil db", catalog.ErrStorageUnavailable)
	}
	for _, table := range Tables() {
		var one int
		err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", table)).Scan(&one)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("%w: table %s: %v", catalog.ErrStorageUnavailable, table, err)
		}
	}
	return nil
}

// Stations returns a station repository bound to the store.
func (s *Store) Stations() *StationRepository {
	return NewStationRepository(s.db, WithDialect(s.dialect))
}

// Assets returns an asset repository bound to the store.
func (s *Store) Assets() *AssetRepository {
	return NewAssetRepository(s.db, WithDialect(s.dialect))
}

// Option configures a repository.
type Option func(*repoOptions)

type repoOptions struct {
	dialect Dialect
}

// WithDialect selects the placeholder and error dialect. Defaults to SQLite.
func WithDialect(dialect Dialect) Option {
	return func(o *repoOptions) {
		if dialect != "" {
			o.dialect = dialect
		}
	}
}

func buildOptions(opts []Option) repoOptions {
	o := repoOptions{dialect: DialectSQLite}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}
