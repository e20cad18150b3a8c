package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/youte"
)

// Compile-time interface verification.
var (
	_ youte.ProgressStore        = (*ProgressStore)(nil)
	_ youte.ProgressStoreService = (*ProgressStoreService)(nil)
)

// progressExt is the file extension of run progress databases.
const progressExt = ".db"

const progressSchema = `
	CREATE TABLE IF NOT EXISTS cursors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_key TEXT NOT NULL DEFAULT '',
		token TEXT NOT NULL,
		retrieved_at TEXT,
		UNIQUE (owner_key, token)
	);

	CREATE INDEX IF NOT EXISTS idx_cursors_pending ON cursors(owner_key, retrieved_at);

	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 0),
		params TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
`

// ProgressStoreService keeps one progress database per run in a directory.
type ProgressStoreService struct {
	dir string
}

// NewProgressStoreService creates a ProgressStoreService rooted at dir.
func NewProgressStoreService(dir string) *ProgressStoreService {
	return &ProgressStoreService{dir: dir}
}

// Path returns the database path of a run.
func (s *ProgressStoreService) Path(runID string) string {
	return filepath.Join(s.dir, runID+progressExt)
}

// OpenProgressStore opens or creates the store of a run.
// Returns ECONFIG if an existing file is not a usable progress store.
func (s *ProgressStoreService) OpenProgressStore(ctx context.Context, runID string) (youte.ProgressStore, error) {
	if err := validateRunID(runID); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	path := s.Path(runID)
	db := NewDB(path, progressSchema)
	if err := db.Open(); err != nil {
		return nil, youte.WrapError(youte.ECONFIG, err, "progress store %s is unreadable", path)
	}
	return &ProgressStore{db: db}, nil
}

// FindRuns lists runs with stored progress, sorted by identifier.
func (s *ProgressStoreService) FindRuns(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var runs []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != progressExt {
			continue
		}
		runs = append(runs, strings.TrimSuffix(e.Name(), progressExt))
	}
	sort.Strings(runs)
	return runs, nil
}

// RemoveRun deletes the stored progress of a run.
func (s *ProgressStoreService) RemoveRun(ctx context.Context, runID string) error {
	if err := validateRunID(runID); err != nil {
		return err
	}
	path := s.Path(runID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return youte.Errorf(youte.ENOTFOUND, "run %q not found", runID)
	}
	return removeFiles(path)
}

func validateRunID(runID string) error {
	if runID == "" {
		return youte.Errorf(youte.EINVALID, "run identifier required")
	}
	if strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return youte.Errorf(youte.EINVALID, "invalid run identifier %q", runID)
	}
	return nil
}

// ProgressStore implements youte.ProgressStore on one SQLite file.
type ProgressStore struct {
	db *DB
}

// PendingCursors returns the unretrieved tokens of a scope in discovery order.
func (s *ProgressStore) PendingCursors(ctx context.Context, ownerKey string) ([]string, error) {
	var known int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cursors WHERE owner_key = ?", ownerKey,
	).Scan(&known); err != nil {
		return nil, err
	}
	if known == 0 {
		if err := s.DiscoverNext(ctx, "", ownerKey); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT token FROM cursors
		WHERE owner_key = ? AND retrieved_at IS NULL
		ORDER BY id
	`, ownerKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// MarkRetrieved stamps a cursor; an already stamped cursor keeps its first stamp.
func (s *ProgressStore) MarkRetrieved(ctx context.Context, token, ownerKey string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cursors (owner_key, token, retrieved_at) VALUES (?, ?, ?)
		ON CONFLICT(owner_key, token) DO UPDATE
		SET retrieved_at = excluded.retrieved_at
		WHERE cursors.retrieved_at IS NULL
	`, ownerKey, token, formatTime(at))
	return err
}

// DiscoverNext records a pending cursor unless the token is already known.
func (s *ProgressStore) DiscoverNext(ctx context.Context, token, ownerKey string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO cursors (owner_key, token) VALUES (?, ?)",
		ownerKey, token)
	return err
}

// CountRetrieved returns the number of retrieved cursors of a scope.
func (s *ProgressStore) CountRetrieved(ctx context.Context, ownerKey string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cursors WHERE owner_key = ? AND retrieved_at IS NOT NULL",
		ownerKey).Scan(&n)
	return n, err
}

// CountPending returns the number of unretrieved cursors of the run.
func (s *ProgressStore) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cursors WHERE retrieved_at IS NULL").Scan(&n)
	return n, err
}

// Cursors returns every cursor of the run in discovery order.
func (s *ProgressStore) Cursors(ctx context.Context) ([]youte.PageCursor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT owner_key, token, retrieved_at FROM cursors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cursors []youte.PageCursor
	for rows.Next() {
		var c youte.PageCursor
		var retrievedAt sql.NullString
		if err := rows.Scan(&c.OwnerKey, &c.Token, &retrievedAt); err != nil {
			return nil, err
		}
		if retrievedAt.Valid {
			t, err := parseTime(retrievedAt.String, "retrieved_at")
			if err != nil {
				return nil, youte.WrapError(youte.ECONFIG, err, "progress store is malformed")
			}
			c.RetrievedAt = &t
		}
		cursors = append(cursors, c)
	}
	return cursors, rows.Err()
}

// StoreMeta persists the run parameters, replacing any stored ones.
func (s *ProgressStore) StoreMeta(ctx context.Context, params youte.RunParams) error {
	b, err := json.Marshal(params)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO meta (id, params, created_at) VALUES (0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET params = excluded.params
	`, string(b), formatTime(time.Now()))
	return err
}

// LoadMeta returns the stored run parameters.
func (s *ProgressStore) LoadMeta(ctx context.Context) (youte.RunParams, error) {
	var params youte.RunParams
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT params FROM meta WHERE id = 0").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return params, youte.Errorf(youte.ENOTFOUND, "run metadata not found")
	}
	if err != nil {
		return params, err
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return params, youte.WrapError(youte.ECONFIG, err, "run metadata is malformed")
	}
	return params, nil
}

// Destroy closes the store and deletes its files.
func (s *ProgressStore) Destroy() error {
	return s.db.Remove()
}

// Close closes the store.
func (s *ProgressStore) Close() error {
	return s.db.Close()
}
