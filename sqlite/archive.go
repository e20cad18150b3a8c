package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/fwojciec/youte"
)

// Ensure Archive implements youte.PageWriter at compile time.
var _ youte.PageWriter = (*Archive)(nil)

const archiveSchema = `
	CREATE TABLE IF NOT EXISTS archive_tables (
		name TEXT PRIMARY KEY,
		columns TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run TEXT NOT NULL,
		table_name TEXT NOT NULL,
		item_id TEXT NOT NULL,
		collected_at TEXT NOT NULL,
		UNIQUE(run, table_name, item_id)
	);
`

// Archive stores flattened pages in a relational database: one table per
// resource family keyed by item id, plus run_items linking every stored
// item to the runs that collected it. The first stored version of an item
// is kept.
type Archive struct {
	mu     sync.Mutex
	db     *DB
	flat   youte.Flattener
	tables map[string][]string
}

// OpenArchive opens or creates the archive at path.
// Returns ECONFIG if the file exists but is not a usable archive.
func OpenArchive(path string, flat youte.Flattener) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db := NewDB(path, archiveSchema)
	if err := db.Open(); err != nil {
		return nil, youte.WrapError(youte.ECONFIG, err, "archive %s is unreadable", path)
	}
	a := &Archive{db: db, flat: flat}
	if err := a.loadTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.db.Close()
}

// WritePage stores the items of page and links them to the page's run.
// Rows are committed per page.
func (a *Archive) WritePage(ctx context.Context, page *youte.ResponsePage) error {
	rows, err := a.flat.Flatten(page)
	if err != nil {
		return err
	}
	if len(rows.Columns) == 0 {
		return youte.Errorf(youte.EINVALID, "table %s has no columns", rows.Table)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := a.ensureTable(ctx, tx, rows); err != nil {
		return err
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		quoteIdent(rows.Table),
		joinIdents(rows.Columns),
		strings.TrimSuffix(strings.Repeat("?, ", len(rows.Columns)), ", "),
	))
	if err != nil {
		return err
	}
	defer insert.Close()

	link, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO run_items (run, table_name, item_id, collected_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer link.Close()

	collectedAt := formatTime(page.RetrievedAt)
	for _, row := range rows.Values {
		if len(row) != len(rows.Columns) {
			return youte.Errorf(youte.EINVALID, "%s row has %d values for %d columns", rows.Table, len(row), len(rows.Columns))
		}
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", rows.Table, err)
		}
		if _, err := link.ExecContext(ctx, page.Run, rows.Table, row[0], collectedAt); err != nil {
			return fmt.Errorf("link %s to run: %w", row[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	a.tables[rows.Table] = rows.Columns
	return nil
}

// ensureTable creates the table of rows on first use and checks the
// column layout of an existing one.
func (a *Archive) ensureTable(ctx context.Context, tx *sql.Tx, rows *youte.TableRows) error {
	cols, ok := a.tables[rows.Table]
	if !ok {
		var layout string
		err := tx.QueryRowContext(ctx, "SELECT columns FROM archive_tables WHERE name = ?", rows.Table).Scan(&layout)
		switch {
		case err == nil:
			if err := json.Unmarshal([]byte(layout), &cols); err != nil {
				return youte.Errorf(youte.ECONFIG, "archive table %s has a corrupt column layout", rows.Table)
			}
			ok = true
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
	}
	if ok {
		if !slices.Equal(cols, rows.Columns) {
			return youte.Errorf(youte.ECONFLICT, "archive table %s has a different column layout", rows.Table)
		}
		return nil
	}
	if rows.Table == "" || rows.Table == "archive_tables" || rows.Table == "run_items" {
		return youte.Errorf(youte.EINVALID, "invalid archive table name %q", rows.Table)
	}

	defs := make([]string, len(rows.Columns))
	for i, c := range rows.Columns {
		defs[i] = quoteIdent(c) + " TEXT"
		if i == 0 {
			defs[i] += " PRIMARY KEY"
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(rows.Table), strings.Join(defs, ", "),
	)); err != nil {
		return fmt.Errorf("create table %s: %w", rows.Table, err)
	}

	layout, err := json.Marshal(rows.Columns)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO archive_tables (name, columns) VALUES (?, ?)",
		rows.Table, string(layout),
	); err != nil {
		return err
	}
	return nil
}

// loadTables reads the table catalog.
func (a *Archive) loadTables(ctx context.Context) error {
	rows, err := a.db.QueryContext(ctx, "SELECT name, columns FROM archive_tables")
	if err != nil {
		return youte.WrapError(youte.ECONFIG, err, "archive %s is unreadable", a.db.Path())
	}
	defer rows.Close()

	tables := make(map[string][]string)
	for rows.Next() {
		var name, layout string
		if err := rows.Scan(&name, &layout); err != nil {
			return err
		}
		var cols []string
		if err := json.Unmarshal([]byte(layout), &cols); err != nil || len(cols) == 0 {
			return youte.Errorf(youte.ECONFIG, "archive table %s has a corrupt column layout", name)
		}
		tables[name] = cols
	}
	if err := rows.Err(); err != nil {
		return err
	}
	a.tables = tables
	return nil
}

// ValueQuery selects one column of the items a run stored in a table.
type ValueQuery struct {
	Run    string
	Table  string
	Column string

	// Positive, if set, keeps only items whose named column holds a
	// number above zero.
	Positive string
}

// Values returns the distinct non-empty values selected by q, in the
// order their items were first stored by the run.
// Returns ENOTFOUND if the archive has no such table.
func (a *Archive) Values(ctx context.Context, q ValueQuery) ([]string, error) {
	cols, err := a.columns(ctx, q.Table)
	if err != nil {
		return nil, err
	}
	for _, c := range []string{q.Column, q.Positive} {
		if c != "" && !slices.Contains(cols, c) {
			return nil, youte.Errorf(youte.EINVALID, "archive table %s has no column %q", q.Table, c)
		}
	}
	if q.Column == "" {
		return nil, youte.Errorf(youte.EINVALID, "column required")
	}

	column := "t." + quoteIdent(q.Column)
	query := fmt.Sprintf(`
		SELECT %[1]s FROM run_items r
		JOIN %[2]s t ON t.%[3]s = r.item_id
		WHERE r.run = ? AND r.table_name = ? AND %[1]s IS NOT NULL AND %[1]s <> ''`,
		column, quoteIdent(q.Table), quoteIdent(cols[0]))
	if q.Positive != "" {
		query += fmt.Sprintf(" AND CAST(t.%s AS INTEGER) > 0", quoteIdent(q.Positive))
	}
	query += fmt.Sprintf(" GROUP BY %s ORDER BY MIN(r.id)", column)

	rows, err := a.db.QueryContext(ctx, query, q.Run, q.Table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// TableCount is the number of items stored in one archive table.
type TableCount struct {
	Table string
	Items int
}

// Counts returns the item count of every table, sorted by table name.
func (a *Archive) Counts(ctx context.Context) ([]TableCount, error) {
	a.mu.Lock()
	err := a.loadTables(ctx)
	names := make([]string, 0, len(a.tables))
	for name := range a.tables {
		names = append(names, name)
	}
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	counts := make([]TableCount, 0, len(names))
	for _, name := range names {
		var n int
		if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n); err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Table: name, Items: n})
	}
	return counts, nil
}

// columns returns the layout of a table, rereading the catalog when the
// table was created through another handle.
func (a *Archive) columns(ctx context.Context, table string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cols, ok := a.tables[table]; ok {
		return cols, nil
	}
	if err := a.loadTables(ctx); err != nil {
		return nil, err
	}
	if cols, ok := a.tables[table]; ok {
		return cols, nil
	}
	return nil, youte.Errorf(youte.ENOTFOUND, "archive has no table %q", table)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func joinIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
