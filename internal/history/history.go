// Package history records translation runs and caches chunk translations
// in the SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/db"
	"github.com/Rust-User-Group-VR/gpt-md-translator/internal/translate"
)

// Run is one translated document.
type Run struct {
	ID         string
	InputPath  string
	OutputPath string
	Provider   string
	Model      string
	Chunks     int
	CacheHits  int
	Usage      *translate.Usage // nil when no call reported usage
	CreatedAt  time.Time
}

// Store provides read/write access to runs and cached translations.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given DB.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// ---- Runs ----

// InsertRun records r and returns its generated ID.
func (s *Store) InsertRun(r Run) (string, error) {
	var u translate.Usage
	hasUsage := r.Usage != nil
	if hasUsage {
		u = *r.Usage
	}

	var id string
	err := s.db.Conn().QueryRow(`
		INSERT INTO runs (input_path, output_path, provider, model, chunks, cache_hits,
		                  has_usage, prompt_tokens, completion_tokens, total_tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		r.InputPath, r.OutputPath, r.Provider, r.Model, r.Chunks, r.CacheHits,
		hasUsage, u.PromptTokens, u.CompletionTokens, u.TotalTokens,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("history: insert run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Conn().Query(`
		SELECT id, input_path, output_path, provider, model, chunks, cache_hits,
		       has_usage, prompt_tokens, completion_tokens, total_tokens, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			hasUsage  bool
			u         translate.Usage
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.InputPath, &r.OutputPath, &r.Provider, &r.Model,
			&r.Chunks, &r.CacheHits, &hasUsage,
			&u.PromptTokens, &u.CompletionTokens, &u.TotalTokens, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if hasUsage {
			r.Usage = &u
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ---- Translations ----

// Get returns the cached translation for key.
func (s *Store) Get(key string) (string, bool, error) {
	var text string
	err := s.db.Conn().QueryRow(`SELECT translation FROM translations WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("history: get translation: %w", err)
	}
	return text, true, nil
}

// Put stores a translation, replacing any previous one for key.
func (s *Store) Put(key, provider, model, translation string) error {
	_, err := s.db.Conn().Exec(`
		INSERT INTO translations (key, provider, model, translation)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		    translation = excluded.translation,
		    created_at  = CURRENT_TIMESTAMP`,
		key, provider, model, translation,
	)
	if err != nil {
		return fmt.Errorf("history: put translation: %w", err)
	}
	return nil
}

// ClearCache deletes every cached translation and returns how many were removed.
func (s *Store) ClearCache() (int64, error) {
	res, err := s.db.Conn().Exec(`DELETE FROM translations`)
	if err != nil {
		return 0, fmt.Errorf("history: clear cache: %w", err)
	}
	return res.RowsAffected()
}

func parseTime(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
