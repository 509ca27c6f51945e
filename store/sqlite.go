package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	// registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore keeps records in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path and brings its schema up to date.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	// SQLite serializes writers.
	db.SetMaxOpenConns(1)
	if err := migrateUp(db); err != nil {
		return nil, multierr.Combine(err, db.Close())
	}
	return &SQLiteStore{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "loading migrations")
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "creating sqlite migration driver")
	}
	// The migrate instance is not closed since that would close db.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return errors.Wrap(err, "creating migrate instance")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration up failed")
	}
	return nil
}

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec.Lanes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO lanes (id, published_at, lanes) VALUES (?, ?, ?)",
		rec.ID, rec.PublishedAt.UnixNano(), string(data))
	return err
}

// Latest implements Store.
func (s *SQLiteStore) Latest(ctx context.Context) (Record, error) {
	recs, err := s.List(ctx, 1)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNoLanes
	}
	return recs[0], nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) (out []Record, err error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, published_at, lanes FROM lanes ORDER BY published_at DESC, seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, rows.Close())
	}()

	for rows.Next() {
		var (
			rec         Record
			publishedAt int64
			data        string
		)
		if err := rows.Scan(&rec.ID, &publishedAt, &data); err != nil {
			return nil, err
		}
		rec.PublishedAt = time.Unix(0, publishedAt).UTC()
		if err := json.Unmarshal([]byte(data), &rec.Lanes); err != nil {
			return nil, errors.Wrapf(err, "decoding lanes of %s", rec.ID)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}
