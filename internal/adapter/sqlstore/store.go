// Package sqlstore persists joined climate records in a single relational
// table. SQLite (modernc.org/sqlite) is the default embedded backend;
// PostgreSQL is available through the pgx stdlib driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store reads and writes the climate table.
type Store struct {
	db     *sql.DB
	driver string
	table  string
	logger *slog.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn, table string, logger *slog.Logger) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps the embedded file free of writer contention.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &Store{db: db, driver: driver, table: table, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace drops the table and writes records in their given order. Previous
// contents are discarded, never merged.
func (s *Store) Replace(ctx context.Context, records []domain.JoinedRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+s.table); err != nil {
		return fmt.Errorf("drop table %s: %w", s.table, err)
	}
	create := `CREATE TABLE ` + s.table + ` (
		id INTEGER PRIMARY KEY,
		station TEXT NOT NULL,
		variable TEXT NOT NULL,
		month TEXT NOT NULL,
		value DOUBLE PRECISION,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	)`
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX idx_`+s.table+`_station ON `+s.table+` (station)`); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+s.table+
		` (id, station, variable, month, value, latitude, longitude) VALUES (`+s.placeholders(1, 7)+`)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i+1, r.Station, r.Variable, r.Month,
			nullFloat(r.Value), nullFloat(r.Lat), nullFloat(r.Lon)); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	s.logger.Info("table replaced", "table", s.table, "rows", len(records))
	return nil
}

// ApplyCorrections overwrites the coordinates of every row whose station
// equals a correction's station and returns the number of rows updated.
// Applying the same list twice leaves the table unchanged.
func (s *Store) ApplyCorrections(ctx context.Context, corrections []domain.Correction) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin corrections: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `UPDATE `+s.table+
		` SET latitude = `+s.placeholder(1)+`, longitude = `+s.placeholder(2)+
		` WHERE station = `+s.placeholder(3))
	if err != nil {
		return 0, fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	var total int64
	for _, c := range corrections {
		res, err := stmt.ExecContext(ctx, c.Lat, c.Lon, c.Station)
		if err != nil {
			return 0, fmt.Errorf("correct %q: %w", c.Station, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("correct %q: %w", c.Station, err)
		}
		if n == 0 {
			s.logger.Debug("correction matched no rows", "station", c.Station)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit corrections: %w", err)
	}
	s.logger.Info("corrections applied", "entries", len(corrections), "rows", total)
	return total, nil
}

// LoadAll returns every stored row in insertion order.
func (s *Store) LoadAll(ctx context.Context) ([]domain.JoinedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT station, variable, month, value, latitude, longitude FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var out []domain.JoinedRecord
	for rows.Next() {
		var (
			r             domain.JoinedRecord
			val, lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&r.Station, &r.Variable, &r.Month, &val, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		r.Value = floatPtr(val)
		r.Lat = floatPtr(lat)
		r.Lon = floatPtr(lon)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.table, err)
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

func (s *Store) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *Store) placeholders(from, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = s.placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
