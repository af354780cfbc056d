package journal

import "context"

// Reader serves read-only views of the sheet.
type Reader struct {
	adapter *Adapter
}

// NewReader wires a reader over the adapter.
func NewReader(adapter *Adapter) *Reader {
	return &Reader{adapter: adapter}
}

// Table loads the current snapshot.
func (r *Reader) Table(ctx context.Context) (Table, error) {
	return r.adapter.Load(ctx)
}

// Search loads the sheet and returns rows matching term.
func (r *Reader) Search(ctx context.Context, term string) ([]Match, error) {
	t, err := r.adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	return t.Search(term), nil
}
