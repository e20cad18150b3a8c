package mock

import "github.com/fwojciec/youte"

var _ youte.Flattener = (*Flattener)(nil)

// Flattener is a mock implementation of youte.Flattener.
type Flattener struct {
	FlattenFn func(page *youte.ResponsePage) (*youte.TableRows, error)
}

func (f *Flattener) Flatten(page *youte.ResponsePage) (*youte.TableRows, error) {
	return f.FlattenFn(page)
}
