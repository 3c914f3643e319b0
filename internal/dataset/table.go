package dataset

import "sort"

// Table is an ordered list of rows over an explicit column list. All cell
// values are text; row cells align positionally with Columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Merge unions two tables into one. The output column list is the sorted
// union of both inputs; every row is reindexed onto it, with cells for
// columns absent from the row's source table left empty. Output row order
// is all of a's rows followed by all of b's rows, without deduplication.
func Merge(a, b Table) Table {
	seen := make(map[string]struct{}, len(a.Columns)+len(b.Columns))
	union := make([]string, 0, len(a.Columns)+len(b.Columns))
	for _, col := range a.Columns {
		if _, ok := seen[col]; !ok {
			seen[col] = struct{}{}
			union = append(union, col)
		}
	}
	for _, col := range b.Columns {
		if _, ok := seen[col]; !ok {
			seen[col] = struct{}{}
			union = append(union, col)
		}
	}
	sort.Strings(union)

	merged := Table{Columns: union, Rows: make([][]string, 0, len(a.Rows)+len(b.Rows))}
	merged.Rows = append(merged.Rows, reindex(a, union)...)
	merged.Rows = append(merged.Rows, reindex(b, union)...)
	return merged
}

func reindex(t Table, columns []string) [][]string {
	// Position of each source column; first occurrence wins on duplicates.
	index := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		if _, ok := index[col]; !ok {
			index[col] = i
		}
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, src := range t.Rows {
		row := make([]string, len(columns))
		for i, col := range columns {
			if j, ok := index[col]; ok && j < len(src) {
				row[i] = src[j]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
