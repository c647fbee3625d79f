package session

import (
	"context"
	"database/sql"
	"time"

	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/moola-ai/coach/internal/errors"
)

// SQLiteStore persists session logs in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the session database at the given path, creating the
// schema if it doesn't exist.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSessionLoadFailed,
			"failed to open session database", apperrors.CategorySystem)
	}

	// Set performance pragmas
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, apperrors.Wrap(err, apperrors.CodeSessionLoadFailed,
				"failed to configure session database", apperrors.CategorySystem)
		}
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS session_turns (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_session_turns_session
			ON session_turns(session_id, id);
	`)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSessionLoadFailed,
			"failed to initialize session schema", apperrors.CategorySystem)
	}
	return nil
}

// History returns every turn for the session in append order.
func (s *SQLiteStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content FROM session_turns
		WHERE session_id = ?
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSessionLoadFailed,
			"failed to load session history", apperrors.CategorySystem)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeSessionLoadFailed,
				"failed to scan session turn", apperrors.CategorySystem)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSessionLoadFailed,
			"failed to read session history", apperrors.CategorySystem)
	}

	return turns, nil
}

// Append adds turns to the end of the session log.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSessionStoreFailed,
			"failed to begin session write", apperrors.CategorySystem)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, t := range turns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_turns (session_id, role, content, created_at)
			VALUES (?, ?, ?, ?)
		`, sessionID, t.Role, t.Content, now); err != nil {
			return apperrors.Wrap(err, apperrors.CodeSessionStoreFailed,
				"failed to append session turn", apperrors.CategorySystem)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeSessionStoreFailed,
			"failed to commit session write", apperrors.CategorySystem)
	}
	return nil
}

// Delete removes a session and its turns.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM session_turns WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeSessionStoreFailed,
			"failed to delete session", apperrors.CategorySystem)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeSessionStoreFailed,
			"failed to count deleted turns", apperrors.CategorySystem)
	}
	return affected > 0, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
