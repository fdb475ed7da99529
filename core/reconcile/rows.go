package reconcile

import (
	"context"

	"asset-reconciler/core/staging"
	"asset-reconciler/core/table"
)

// rowSource resolves full rows by encoded key for the report.
type rowSource interface {
	Rows(ctx context.Context, side string, keys []string) (map[string]table.Record, error)
}

// memoryRows serves rows straight from the mapped tables.
type memoryRows struct {
	tables map[string]*table.Table
	index  map[string]map[string]int
}

func (m *memoryRows) Rows(_ context.Context, side string, keys []string) (map[string]table.Record, error) {
	t, idx := m.tables[side], m.index[side]
	out := make(map[string]table.Record, len(keys))
	for _, k := range keys {
		if i, ok := idx[k]; ok {
			out[k] = t.Rows[i]
		}
	}
	return out, nil
}

// stagedRows reads rows back from the session's staging store.
type stagedRows struct {
	store *staging.Store
}

func (s *stagedRows) Rows(ctx context.Context, side string, keys []string) (map[string]table.Record, error) {
	return s.store.FetchByKeys(ctx, side, keys)
}

// rowKeys lists the encoded key of every row, blank for rows whose key is empty.
func rowKeys(n int, index map[string]int) []string {
	out := make([]string, n)
	for k, i := range index {
		out[i] = k
	}
	return out
}
