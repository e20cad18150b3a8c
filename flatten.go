package youte

// TableRows is the tabular form of the items of one page.
type TableRows struct {
	// Table names the resource family the items belong to, e.g. "videos".
	Table string

	// Columns are the column names. The first column identifies the item.
	Columns []string

	// Values holds one row per item, in item order.
	Values [][]string
}

// Flattener maps the items of a page to rows of their resource table.
type Flattener interface {
	Flatten(page *ResponsePage) (*TableRows, error)
}
