package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
)

// Migrate executes every *.sql file in fsys in lexical order. Files are expected to be
// idempotent (IF NOT EXISTS); no version table is kept.
func Migrate(ctx context.Context, q Querier, fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, err
		}
		if _, err := q.Exec(ctx, string(body)); err != nil {
			return applied, fmt.Errorf("migration %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}
