package patterns

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/emergentmind/patternevo/pkg/errors"
	"github.com/emergentmind/patternevo/pkg/logging"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Repository using SQLite as the backend. The current
// row of each pattern is kept in `patterns`; every save also appends an
// immutable row to `pattern_history`, which backs GetPatternHistory.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	initialized sync.Once
}

// NewSQLiteStore creates a new SQLite-backed pattern store. If path is
// ":memory:", the database is created in-memory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to open SQLite database"),
			errors.Fields{"path": path},
		)
	}

	store := &SQLiteStore{
		db:   db,
		path: path,
	}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// Enable WAL mode for better concurrency
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS patterns (
            id TEXT PRIMARY KEY,
            type TEXT NOT NULL,
            name TEXT NOT NULL,
            confidence REAL NOT NULL,
            impact REAL NOT NULL,
            data TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS pattern_history (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            pattern_id TEXT NOT NULL,
            data TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );

        CREATE INDEX IF NOT EXISTS idx_pattern_history_pattern_id
        ON pattern_history(pattern_id);
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to initialize database")
			return
		}
	})
	return initErr
}

// SavePattern upserts the pattern's current row and appends a history row.
func (s *SQLiteStore) SavePattern(ctx context.Context, p *Pattern) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	if p.ID == "" {
		return errors.New(errors.InvalidInput, "pattern has no ID")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to marshal pattern"),
			errors.Fields{"pattern_id": p.ID},
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to begin transaction"),
			errors.Fields{"pattern_id": p.ID},
		)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logging.GetLogger().Error(ctx, "failed to rollback transaction: %v", err)
		}
	}()

	upsert := `
    INSERT INTO patterns (id, type, name, confidence, impact, data, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
    ON CONFLICT(id) DO UPDATE SET
        type = excluded.type,
        name = excluded.name,
        confidence = excluded.confidence,
        impact = excluded.impact,
        data = excluded.data,
        updated_at = CURRENT_TIMESTAMP
    `

	if _, err = tx.ExecContext(ctx, upsert, p.ID, string(p.Type), p.Name, p.Confidence, p.Impact, string(data)); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to store pattern"),
			errors.Fields{"pattern_id": p.ID},
		)
	}

	history := `INSERT INTO pattern_history (pattern_id, data) VALUES (?, ?)`
	if _, err = tx.ExecContext(ctx, history, p.ID, string(data)); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to append pattern history"),
			errors.Fields{"pattern_id": p.ID},
		)
	}

	if err = tx.Commit(); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to commit transaction"),
			errors.Fields{"pattern_id": p.ID},
		)
	}

	return nil
}

// GetPattern returns the current variant of a pattern.
func (s *SQLiteStore) GetPattern(ctx context.Context, id string) (*Pattern, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM patterns WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "pattern not found"),
			errors.Fields{"pattern_id": id},
		)
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to retrieve pattern"),
			errors.Fields{"pattern_id": id},
		)
	}

	var p Pattern
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to unmarshal pattern"),
			errors.Fields{"pattern_id": id},
		)
	}
	return &p, nil
}

// GetPatternHistory returns a pattern's stored variants, oldest first.
func (s *SQLiteStore) GetPatternHistory(ctx context.Context, id string) ([]Pattern, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM pattern_history WHERE pattern_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to query pattern history"),
			errors.Fields{"pattern_id": id},
		)
	}
	defer rows.Close()

	var history []Pattern
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan history row")
		}
		var p Pattern
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to unmarshal history row")
		}
		history = append(history, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "error iterating history rows")
	}

	return history, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to close database connection")
	}
	return nil
}
