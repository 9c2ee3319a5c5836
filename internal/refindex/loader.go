// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refindex

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

// RowSource supplies raw reference rows for a language pair, typically by
// downloading them from the hub.
type RowSource interface {
	FetchRows(ctx context.Context, langs string, w io.Writer) ([]types.ReferenceRow, error)
}

// Loader serves reference maps from the index, filling the index from a
// RowSource on a miss.
type Loader struct {
	Store  *Store
	Source RowSource
}

// References returns the source-to-target map for langs. An indexed pair
// is served straight from SQLite; otherwise the rows are fetched, indexed,
// then served.
func (l *Loader) References(ctx context.Context, langs string, w io.Writer) (map[string]string, error) {
	n, err := l.Store.Count(ctx, langs)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		rows, err := l.Source.FetchRows(ctx, langs, w)
		if err != nil {
			return nil, err
		}
		if err := l.Store.Insert(ctx, langs, rows); err != nil {
			return nil, fmt.Errorf("indexing %s references: %w", langs, err)
		}
		fmt.Fprintf(w, "indexed: %s (%d rows)\n", langs, len(rows))
	}

	return l.Store.Lookup(ctx, langs)
}
