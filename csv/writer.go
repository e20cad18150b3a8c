package csv

import (
	"bufio"
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/youte"
)

// maxLineSize bounds one line of a response file.
const maxLineSize = 64 << 20

// Ensure Writer implements youte.PageWriter at compile time.
var _ youte.PageWriter = (*Writer)(nil)

// Writer writes the items of pages as CSV rows. The table is chosen by the
// first page; later pages must belong to the same table.
type Writer struct {
	mu     sync.Mutex
	cw     *stdcsv.Writer
	closer io.Closer
	flat   *Flattener
	table  string
	header bool
	rows   int
}

// NewWriter creates a Writer on w. conv renders HTML display fields and
// may be nil to keep them verbatim.
func NewWriter(w io.Writer, conv youte.Converter) *Writer {
	return &Writer{cw: stdcsv.NewWriter(w), flat: NewFlattener(conv)}
}

// OpenWriter opens path for appending. The header is written only when
// the file is empty.
func OpenWriter(path string, conv youte.Converter) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{
		cw:     stdcsv.NewWriter(f),
		closer: f,
		flat:   NewFlattener(conv),
		header: info.Size() > 0,
	}, nil
}

// Rows returns the number of rows written.
func (w *Writer) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// WritePage writes one row per item of page.
func (w *Writer) WritePage(ctx context.Context, page *youte.ResponsePage) error {
	rows, err := w.flat.Flatten(page)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.table == "" {
		w.table = rows.Table
	} else if w.table != rows.Table {
		return youte.Errorf(youte.EINVALID, "cannot mix %s and %s rows in one file", w.table, rows.Table)
	}
	if !w.header {
		if err := w.cw.Write(rows.Columns); err != nil {
			return err
		}
		w.header = true
	}

	for _, row := range rows.Values {
		if err := w.cw.Write(row); err != nil {
			return err
		}
		w.rows++
	}
	w.cw.Flush()
	return w.cw.Error()
}

// Close flushes pending rows and closes the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Tidy converts a JSON Lines file of responses read from r into rows on w
// and returns the number of rows written. Lines carrying collector
// metadata are accepted.
func Tidy(ctx context.Context, r io.Reader, w *Writer) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	before := w.Rows()
	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return w.Rows() - before, err
		}
		resp, err := youte.DecodeResponse(line)
		if err != nil {
			return w.Rows() - before, youte.WrapError(youte.ErrorCode(err), err, "line %d", n)
		}
		page := &youte.ResponsePage{Body: append(json.RawMessage(nil), line...), Response: resp}
		if err := w.WritePage(ctx, page); err != nil {
			return w.Rows() - before, err
		}
	}
	if err := sc.Err(); err != nil {
		return w.Rows() - before, err
	}
	return w.Rows() - before, nil
}

func lookup(doc map[string]any, paths [][]string) any {
	for _, path := range paths {
		var cur any = doc
		found := true
		for _, key := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				found = false
				break
			}
			if cur, ok = m[key]; !ok {
				found = false
				break
			}
		}
		if found {
			return cur
		}
	}
	return nil
}

func format(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
