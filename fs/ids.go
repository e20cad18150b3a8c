package fs

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/youte"
)

// maxLineSize bounds one line of a response file.
const maxLineSize = 64 << 20

// ReadIDs reads resource ids from r. Each line is either a bare id or a
// JSON response whose item ids are extracted. Blank lines and lines
// starting with # are ignored. Order is preserved and duplicates are kept.
func ReadIDs(r io.Reader) ([]string, error) {
	var ids []string
	err := scanLines(r, func(n int, line string) error {
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			return nil
		case strings.HasPrefix(line, "{"):
			found, err := ResponseIDs([]byte(line))
			if err != nil {
				return youte.WrapError(youte.EDECODE, err, "line %d", n)
			}
			ids = append(ids, found...)
		default:
			ids = append(ids, line)
		}
		return nil
	})
	return ids, err
}

// ReadIDsFile reads ids from the file at path.
func ReadIDsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, youte.Errorf(youte.ENOTFOUND, "file %s not found", path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadIDs(f)
}

// Dehydrate writes the item ids of the responses in r to w, one per line,
// and returns how many were written.
func Dehydrate(r io.Reader, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	count := 0
	err := scanLines(r, func(n int, line string) error {
		if line == "" {
			return nil
		}
		ids, err := ResponseIDs([]byte(line))
		if err != nil {
			return youte.WrapError(youte.EDECODE, err, "line %d", n)
		}
		for _, id := range ids {
			if _, err := bw.WriteString(id + "\n"); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, bw.Flush()
}

// ResponseIDs returns the ids of the items of one raw response. Search
// results carry an object naming the matched resource; its id is used.
func ResponseIDs(body []byte) ([]string, error) {
	var resp struct {
		Items *[]struct {
			ID json.RawMessage `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return nil, youte.Errorf(youte.EDECODE, "response missing items")
	}

	ids := make([]string, 0, len(*resp.Items))
	for i, item := range *resp.Items {
		id, err := itemID(item.ID)
		if err != nil || id == "" {
			return nil, youte.Errorf(youte.EDECODE, "item %d has no usable id", i)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func itemID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var ref youte.SearchID
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", err
	}
	return ref.Value(), nil
}

func scanLines(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		if err := fn(n, strings.TrimSpace(sc.Text())); err != nil {
			return err
		}
	}
	return sc.Err()
}
