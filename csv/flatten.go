package csv

import (
	"bytes"
	"encoding/json"

	"github.com/fwojciec/youte"
)

// Ensure Flattener implements youte.Flattener at compile time.
var _ youte.Flattener = (*Flattener)(nil)

// Flattener maps pages to rows of the table layout of their list kind.
type Flattener struct {
	conv youte.Converter
}

// NewFlattener creates a Flattener. conv renders HTML display fields and
// may be nil to keep them verbatim.
func NewFlattener(conv youte.Converter) *Flattener {
	return &Flattener{conv: conv}
}

// Flatten returns one row per item of page.
func (f *Flattener) Flatten(page *youte.ResponsePage) (*youte.TableRows, error) {
	if page.Response == nil {
		return nil, youte.Errorf(youte.EINVALID, "page has no decoded response")
	}
	table, err := TableFor(page.Response.ListKind())
	if err != nil {
		return nil, err
	}

	rows := &youte.TableRows{Table: table.Name, Columns: table.Header()}
	for _, item := range page.Items() {
		row, err := f.row(table, item)
		if err != nil {
			return nil, err
		}
		rows.Values = append(rows.Values, row)
	}
	return rows, nil
}

func (f *Flattener) row(table *Table, item youte.Item) ([]string, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(item.Raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, youte.WrapError(youte.EDECODE, err, "item %s", item.ID)
	}

	row := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		v, err := format(lookup(doc, c.Paths))
		if err != nil {
			return nil, err
		}
		if c.HTML && f.conv != nil && v != "" {
			if v, err = f.conv.Convert(v); err != nil {
				return nil, err
			}
		}
		row[i] = v
	}
	return row, nil
}
