package sqlite_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/mock"
	"github.com/fwojciec/youte/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var videoColumns = []string{"video_id", "title", "comment_count"}

// bodyFlattener reads the rows of a page from its body.
func bodyFlattener() *mock.Flattener {
	return &mock.Flattener{
		FlattenFn: func(page *youte.ResponsePage) (*youte.TableRows, error) {
			var rows youte.TableRows
			if err := json.Unmarshal(page.Body, &rows); err != nil {
				return nil, err
			}
			return &rows, nil
		},
	}
}

func rowsPage(t *testing.T, run string, rows youte.TableRows) *youte.ResponsePage {
	t.Helper()
	body, err := json.Marshal(rows)
	require.NoError(t, err)
	return &youte.ResponsePage{Body: body, Run: run, RetrievedAt: noon}
}

func openArchive(t *testing.T) (*sqlite.Archive, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	archive, err := sqlite.OpenArchive(path, bodyFlattener())
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })
	return archive, path
}

func TestArchive_WritePage(t *testing.T) {
	t.Parallel()

	t.Run("creates the table and stores rows", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, _ := openArchive(t)

		err := archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table:   "videos",
			Columns: videoColumns,
			Values:  [][]string{{"v1", "First", "3"}, {"v2", "Second", "0"}},
		}))
		require.NoError(t, err)

		counts, err := archive.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []sqlite.TableCount{{Table: "videos", Items: 2}}, counts)
	})

	t.Run("keeps the first version of an item", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, _ := openArchive(t)

		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "First", "3"}},
		})))
		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-b", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "Renamed", "9"}},
		})))

		titles, err := archive.Values(ctx, sqlite.ValueQuery{Run: "run-b", Table: "videos", Column: "title"})
		require.NoError(t, err)
		assert.Equal(t, []string{"First"}, titles)

		counts, err := archive.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []sqlite.TableCount{{Table: "videos", Items: 1}}, counts)
	})

	t.Run("rejects a different column layout", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, _ := openArchive(t)

		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "First", "3"}},
		})))
		err := archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: []string{"video_id", "title"}, Values: [][]string{{"v2", "Second"}},
		}))
		assert.Equal(t, youte.ECONFLICT, youte.ErrorCode(err))
	})

	t.Run("checks layouts created through another handle", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		first, path := openArchive(t)
		second, err := sqlite.OpenArchive(path, bodyFlattener())
		require.NoError(t, err)
		t.Cleanup(func() { _ = second.Close() })

		require.NoError(t, first.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "First", "3"}},
		})))
		require.NoError(t, second.WritePage(ctx, rowsPage(t, "run-b", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v2", "Second", "1"}},
		})))
		err = second.WritePage(ctx, rowsPage(t, "run-b", youte.TableRows{
			Table: "videos", Columns: []string{"video_id"}, Values: [][]string{{"v3"}},
		}))
		assert.Equal(t, youte.ECONFLICT, youte.ErrorCode(err))
	})

	t.Run("rejects reserved table names", func(t *testing.T) {
		t.Parallel()

		archive, _ := openArchive(t)
		err := archive.WritePage(context.Background(), rowsPage(t, "run-a", youte.TableRows{
			Table: "run_items", Columns: []string{"id"}, Values: [][]string{{"x"}},
		}))
		assert.Equal(t, youte.EINVALID, youte.ErrorCode(err))
	})

	t.Run("rejects rows of the wrong width", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, _ := openArchive(t)
		err := archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "First"}},
		}))
		assert.Equal(t, youte.EINVALID, youte.ErrorCode(err))

		counts, err := archive.Counts(ctx)
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	t.Run("returns flattening errors", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "archive.db")
		archive, err := sqlite.OpenArchive(path, &mock.Flattener{
			FlattenFn: func(page *youte.ResponsePage) (*youte.TableRows, error) {
				return nil, youte.Errorf(youte.EINVALID, "page has no decoded response")
			},
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = archive.Close() })

		err = archive.WritePage(context.Background(), &youte.ResponsePage{Run: "run-a"})
		assert.Equal(t, youte.EINVALID, youte.ErrorCode(err))
	})
}

func TestArchive_Values(t *testing.T) {
	t.Parallel()

	t.Run("selects the values of one run in first-seen order", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, _ := openArchive(t)

		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table:   "videos",
			Columns: videoColumns,
			Values:  [][]string{{"v2", "Second", "0"}, {"v1", "First", "3"}},
		})))
		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table:   "videos",
			Columns: videoColumns,
			Values:  [][]string{{"v3", "", "12"}},
		})))
		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-b", youte.TableRows{
			Table:   "videos",
			Columns: videoColumns,
			Values:  [][]string{{"v4", "Other", "1"}},
		})))

		ids, err := archive.Values(ctx, sqlite.ValueQuery{Run: "run-a", Table: "videos", Column: "video_id"})
		require.NoError(t, err)
		assert.Equal(t, []string{"v2", "v1", "v3"}, ids)

		titles, err := archive.Values(ctx, sqlite.ValueQuery{Run: "run-a", Table: "videos", Column: "title"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Second", "First"}, titles)

		commented, err := archive.Values(ctx, sqlite.ValueQuery{
			Run: "run-a", Table: "videos", Column: "video_id", Positive: "comment_count",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"v1", "v3"}, commented)
	})

	t.Run("collapses repeated values", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, _ := openArchive(t)

		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table:   "search_results",
			Columns: []string{"id", "channel_id"},
			Values:  [][]string{{"v1", "c1"}, {"v2", "c2"}, {"v3", "c1"}},
		})))

		channels, err := archive.Values(ctx, sqlite.ValueQuery{Run: "run-a", Table: "search_results", Column: "channel_id"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, channels)
	})

	t.Run("returns not found for an unknown table", func(t *testing.T) {
		t.Parallel()

		archive, _ := openArchive(t)
		_, err := archive.Values(context.Background(), sqlite.ValueQuery{Run: "run-a", Table: "videos", Column: "video_id"})
		assert.Equal(t, youte.ENOTFOUND, youte.ErrorCode(err))
	})

	t.Run("rejects an unknown column", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, _ := openArchive(t)
		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "First", "3"}},
		})))

		_, err := archive.Values(ctx, sqlite.ValueQuery{Run: "run-a", Table: "videos", Column: "views"})
		assert.Equal(t, youte.EINVALID, youte.ErrorCode(err))

		_, err = archive.Values(ctx, sqlite.ValueQuery{Run: "run-a", Table: "videos", Column: "video_id", Positive: "views"})
		assert.Equal(t, youte.EINVALID, youte.ErrorCode(err))
	})

	t.Run("sees tables written through another handle", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		reader, path := openArchive(t)
		writer, err := sqlite.OpenArchive(path, bodyFlattener())
		require.NoError(t, err)
		require.NoError(t, writer.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "First", "3"}},
		})))
		require.NoError(t, writer.Close())

		ids, err := reader.Values(ctx, sqlite.ValueQuery{Run: "run-a", Table: "videos", Column: "video_id"})
		require.NoError(t, err)
		assert.Equal(t, []string{"v1"}, ids)
	})
}

func TestOpenArchive(t *testing.T) {
	t.Parallel()

	t.Run("rejects a file that is not an archive", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "archive.db")
		require.NoError(t, os.WriteFile(path, []byte("this is not a database, just some text that is long enough"), 0644))

		_, err := sqlite.OpenArchive(path, bodyFlattener())
		assert.Equal(t, youte.ECONFIG, youte.ErrorCode(err))
	})

	t.Run("rejects a corrupt table catalog", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		archive, path := openArchive(t)
		require.NoError(t, archive.WritePage(ctx, rowsPage(t, "run-a", youte.TableRows{
			Table: "videos", Columns: videoColumns, Values: [][]string{{"v1", "First", "3"}},
		})))
		require.NoError(t, archive.Close())

		db := sqlite.NewDB(path, "SELECT 1")
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, "UPDATE archive_tables SET columns = 'nope'")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = sqlite.OpenArchive(path, bodyFlattener())
		assert.Equal(t, youte.ECONFIG, youte.ErrorCode(err))
	})

	t.Run("creates missing directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "archive.db")
		archive, err := sqlite.OpenArchive(path, bodyFlattener())
		require.NoError(t, err)
		require.NoError(t, archive.Close())

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})
}
