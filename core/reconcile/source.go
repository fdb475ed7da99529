package reconcile

import (
	"context"
	"fmt"

	"asset-reconciler/core/table"

	"golang.org/x/sync/errgroup"
)

// Source loads one input table. Implementations read local files, bucket objects or
// hold a table already in memory.
type Source interface {
	// Name identifies the source in errors and logs.
	Name() string
	// Load reads the table. It should honour ctx cancellation.
	Load(ctx context.Context) (*table.Table, error)
}

// TableSource serves a table already in memory.
type TableSource struct {
	Table *table.Table
}

// Name returns the table name.
func (s TableSource) Name() string { return s.Table.Name }

// Load returns the table unchanged.
func (s TableSource) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Table, nil
}

// LoadTables loads both inputs concurrently. The first failure cancels the other load.
func LoadTables(ctx context.Context, platform, reference Source) (*table.Table, *table.Table, error) {
	var p, r *table.Table
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := platform.Load(gctx)
		if err != nil {
			return fmt.Errorf("load platform %s: %w", platform.Name(), err)
		}
		p = t
		return nil
	})
	g.Go(func() error {
		t, err := reference.Load(gctx)
		if err != nil {
			return fmt.Errorf("load reference %s: %w", reference.Name(), err)
		}
		r = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if p.Name == "" {
		p.Name = SidePlatform
	}
	if r.Name == "" {
		r.Name = SideReference
	}
	return p, r, nil
}
