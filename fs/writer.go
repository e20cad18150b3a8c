package fs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/youte"
)

// MetaKey is the member added to every written response.
const MetaKey = "_youte"

// Ensure JSONLWriter implements youte.PageWriter at compile time.
var _ youte.PageWriter = (*JSONLWriter)(nil)

// JSONLWriter writes one response per line. Each line is the provider body
// with the collector metadata added under MetaKey. Lines are flushed as
// they are written so an interrupted run keeps everything it fetched.
type JSONLWriter struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewJSONLWriter creates a JSONLWriter on w. Close does not close w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// OpenJSONLWriter opens path for appending. Appending lets a resumed run
// continue the file of the interrupted one.
func OpenJSONLWriter(path string) (*JSONLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &JSONLWriter{w: bufio.NewWriter(f), closer: f}, nil
}

// WritePage writes page as one line.
func (w *JSONLWriter) WritePage(ctx context.Context, page *youte.ResponsePage) error {
	line, err := FormatPage(page)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(line); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes buffered output and closes the underlying file, if any.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// FormatPage returns the compact body of page with its metadata inserted as
// the first member, leaving the provider's members in their original order.
func FormatPage(page *youte.ResponsePage) ([]byte, error) {
	body := page.Body
	if len(body) == 0 {
		if page.Response == nil {
			return nil, youte.Errorf(youte.EINVALID, "page has no body")
		}
		b, err := json.Marshal(page.Response)
		if err != nil {
			return nil, err
		}
		body = b
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, youte.WrapError(youte.EDECODE, err, "page body is not JSON")
	}
	raw := compact.Bytes()
	if len(raw) < 2 || raw[0] != '{' {
		return nil, youte.Errorf(youte.EDECODE, "page body is not a JSON object")
	}

	meta, err := json.Marshal(page.Meta())
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.WriteByte('{')
	fmt.Fprintf(&out, "%q:", MetaKey)
	out.Write(meta)
	if len(raw) > 2 {
		out.WriteByte(',')
	}
	out.Write(raw[1:])
	return out.Bytes(), nil
}
