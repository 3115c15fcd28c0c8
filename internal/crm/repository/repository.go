// Package repository adapts the remote authoritative store (Postgres) to the
// entity store's persister ports. Calls here run on the write-behind drain
// goroutine or during warm-up/reconciliation, never on a request path.
package repository

import (
	"fmt"
	"sort"
	"strings"
)

// buildPatchSQL renders a partial UPDATE statement from a field patch. Only
// columns in allowed are accepted; unknown keys are an error because they
// indicate a service-layer bug, not bad user input. Column order is sorted
// for deterministic SQL.
func buildPatchSQL(table string, patch map[string]any, allowed map[string]struct{}) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("empty patch for %s", table)
	}

	cols := make([]string, 0, len(patch))
	for col := range patch {
		if _, ok := allowed[col]; !ok {
			return "", nil, fmt.Errorf("column %q not patchable on %s", col, table)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, patch[col])
	}
	sets = append(sets, "updated_at = now()")

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(cols)+1)
	return sql, args, nil
}
