// Package storage provides the SQLite implementation of the snapshot store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/veloops/stationd/core/logger"
	"github.com/veloops/stationd/core/model"
	corestorage "github.com/veloops/stationd/core/storage"
)

// Config defines where the snapshot database lives.
type Config struct {
	Path string `json:"path"`
}

// SQLiteStore implements core/storage.Store on a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS station_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection_time DATETIME NOT NULL,
	station_id TEXT NOT NULL,
	name TEXT,
	area TEXT,
	lat REAL,
	lng REAL,
	pickup_count INTEGER NOT NULL,
	dock_count INTEGER NOT NULL,
	source_update_time DATETIME
);
CREATE INDEX IF NOT EXISTS idx_station_time ON station_snapshots(station_id, collection_time);
CREATE INDEX IF NOT EXISTS idx_collection_time ON station_snapshots(collection_time);`

// New opens (creating if needed) the snapshot database at cfg.Path and
// ensures the table and indexes exist.
func New(cfg Config, log logger.Logger) (*SQLiteStore, error) {
	path := cfg.Path
	if path == "" {
		if err := os.MkdirAll("data", 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		path = filepath.Join("data", "stations.db")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	log.Infof("opened snapshot database at %s", path)
	return &SQLiteStore{db: db, log: log, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append bulk-inserts the batch inside one transaction, so a failed row
// rolls back the whole batch. An empty batch is a no-op.
func (s *SQLiteStore) Append(ctx context.Context, batch []model.StationSnapshot) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO station_snapshots
			(collection_time, station_id, name, area, lat, lng, pickup_count, dock_count, source_update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, snap := range batch {
		var updated sql.NullTime
		if snap.SourceUpdatedAt != nil {
			updated = sql.NullTime{Time: snap.SourceUpdatedAt.UTC(), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			snap.CollectedAt.UTC(),
			snap.StationID,
			snap.Name,
			snap.Area,
			snap.Lat,
			snap.Lng,
			snap.PickupCount,
			snap.DockCount,
			updated,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot for %s: %w", snap.StationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const snapshotColumns = `id, collection_time, station_id, name, area, lat, lng, pickup_count, dock_count, source_update_time`

// LatestPerStation returns the most recent row per station id. Rows sharing
// the maximum collection time are tie-broken by insertion id, so the result
// is deterministic across repeated polls.
func (s *SQLiteStore) LatestPerStation(ctx context.Context) ([]model.StationSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM station_snapshots t
		WHERE t.id = (
			SELECT u.id
			FROM station_snapshots u
			WHERE u.station_id = t.station_id
			ORDER BY u.collection_time DESC, u.id DESC
			LIMIT 1
		)
		ORDER BY t.station_id`, snapshotColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshots: %w", err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// History returns up to limit most recent rows for the station, in the
// requested time order.
func (s *SQLiteStore) History(ctx context.Context, stationID string, limit int, order corestorage.Order) ([]model.StationSnapshot, error) {
	// The inner query picks the most recent rows; the outer one flips them
	// back to ascending when asked, so "asc" still means the newest window.
	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s
			FROM station_snapshots
			WHERE station_id = ?
			ORDER BY collection_time DESC, id DESC
			LIMIT ?
		)`, snapshotColumns, snapshotColumns)
	if order == corestorage.OrderAsc {
		query += " ORDER BY collection_time ASC, id ASC"
	} else {
		query += " ORDER BY collection_time DESC, id DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, stationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", stationID, err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// Retain deletes rows older than now minus maxAgeDays and returns the count
// removed.
func (s *SQLiteStore) Retain(ctx context.Context, maxAgeDays int) (int64, error) {
	cutoff := corestorage.Cutoff(s.now().UTC(), maxAgeDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM station_snapshots WHERE collection_time < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old snapshots: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

func scanSnapshots(rows *sql.Rows) ([]model.StationSnapshot, error) {
	var result []model.StationSnapshot
	for rows.Next() {
		var snap model.StationSnapshot
		var updated sql.NullTime
		if err := rows.Scan(
			&snap.ID,
			&snap.CollectedAt,
			&snap.StationID,
			&snap.Name,
			&snap.Area,
			&snap.Lat,
			&snap.Lng,
			&snap.PickupCount,
			&snap.DockCount,
			&updated,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if updated.Valid {
			t := updated.Time
			snap.SourceUpdatedAt = &t
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return result, nil
}
