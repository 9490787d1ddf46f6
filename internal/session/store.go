package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"kharcha/internal/core"

	_ "modernc.org/sqlite"
)

const (
	keyUser     = "user"
	keyUserID   = "user_id"
	keyUsername = "username"
)

// Store persists the signed-in session and small bits of per-user client
// state in a local sqlite database, surviving restarts.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Current returns the persisted session, if any. A missing or corrupt entry
// reads as signed out.
func (s *Store) Current(ctx context.Context) (core.Session, bool) {
	raw, err := s.get(ctx, keyUser)
	if err != nil {
		return core.Session{}, false
	}

	var sess core.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.UserID == 0 {
		return core.Session{}, false
	}
	return sess, true
}

// Save writes the session atomically. Either all keys update or none do, so a
// crash mid-write never leaves a half-populated session behind.
func (s *Store) Save(ctx context.Context, sess core.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session write: %w", err)
	}
	defer tx.Rollback()

	pairs := [][2]string{
		{keyUser, string(raw)},
		{keyUserID, strconv.FormatInt(sess.UserID, 10)},
		{keyUsername, sess.Username},
	}
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			p[0], p[1]); err != nil {
			return fmt.Errorf("write session key %s: %w", p[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session write: %w", err)
	}
	return nil
}

// Clear signs the user out, dropping the session and any per-user state.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_state`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// DraftCategories returns category names the user typed into the expense form
// that do not exist in the shared category table. They live only in this
// store until the backend learns about them.
func (s *Store) DraftCategories(ctx context.Context, userID int64) []string {
	raw, err := s.get(ctx, draftKey(userID))
	if err != nil {
		return nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil
	}
	return names
}

// AddDraftCategory records an ad-hoc category name for the user. Duplicates
// and names already in the shared table are ignored.
func (s *Store) AddDraftCategory(ctx context.Context, userID int64, name string) error {
	if _, ok := core.CategoryByName(name); ok {
		return nil
	}

	names := s.DraftCategories(ctx, userID)
	if slices.Contains(names, name) {
		return nil
	}
	names = append(names, name)

	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal draft categories: %w", err)
	}
	if err := s.set(ctx, draftKey(userID), string(raw)); err != nil {
		return fmt.Errorf("save draft category: %w", err)
	}
	return nil
}

func draftKey(userID int64) string {
	return "draft_categories:" + strconv.FormatInt(userID, 10)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}
