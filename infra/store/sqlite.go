package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/pkg/export"
)

// SQLiteStore persists yield series in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS yield_series (
        series_key TEXT PRIMARY KEY,
        technology TEXT,
        azimuth REAL,
        tilt REAL,
        year INTEGER,
        latitude REAL,
        longitude REAL,
        unit TEXT,
        payload TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key model.SeriesKey) (model.YieldSeries, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM yield_series WHERE series_key = ?`, key.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.YieldSeries{}, false, nil
	}
	if err != nil {
		return model.YieldSeries{}, false, err
	}
	series, err := export.ReadJSON(bytes.NewBufferString(payload))
	if err != nil {
		return model.YieldSeries{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return series, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, series model.YieldSeries) error {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, series); err != nil {
		return err
	}
	k := series.Key
	_, err := s.db.ExecContext(ctx, `INSERT INTO yield_series
        (series_key, technology, azimuth, tilt, year, latitude, longitude, unit, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(series_key) DO UPDATE SET unit = excluded.unit, payload = excluded.payload`,
		k.String(), k.Technology.String(), k.Azimuth, k.Tilt, k.Year, k.Latitude, k.Longitude, string(series.Unit), buf.String())
	return err
}

// Keys lists the stored keys for a technology, or all keys when tech is empty.
func (s *SQLiteStore) Keys(ctx context.Context, tech model.Technology) ([]model.SeriesKey, error) {
	query := `SELECT technology, azimuth, tilt, year, latitude, longitude FROM yield_series`
	var args []any
	if tech != "" {
		query += ` WHERE technology = ?`
		args = append(args, tech.String())
	}
	query += ` ORDER BY series_key`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.SeriesKey
	for rows.Next() {
		var k model.SeriesKey
		var t string
		if err := rows.Scan(&t, &k.Azimuth, &k.Tilt, &k.Year, &k.Latitude, &k.Longitude); err != nil {
			return nil, err
		}
		k.Technology = model.Technology(t)
		res = append(res, k)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
