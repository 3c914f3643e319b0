package dataset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// skipRows is the fixed count of boilerplate metadata rows preceding the
// header row in every NCCI data member.
const skipRows = 6

// canonicalColumns is the published PTP edit schema. Parsed headers are
// renamed onto it positionally, but only when the column count matches
// exactly; anything else is schema drift and the parsed names are kept.
var canonicalColumns = []string{
	"Column 1",
	"Column 2",
	"*=in existence",
	"Effective",
	"Deletion",
	"Modifier",
	"PTP Edit Rationale",
}

// Parse converts an extracted archive member into a Table. The first six
// rows are unconditionally skipped and row seven is taken as the header.
// Spreadsheet members are read as OOXML; text members are parsed
// whitespace-delimited with a fixed-width fallback.
func Parse(name string, data []byte) (Table, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		rows, err = readXLSX(data)
	} else {
		rows, err = readText(data)
	}
	if err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return tableFromRows(name, rows)
}

func tableFromRows(name string, rows [][]string) (Table, error) {
	if len(rows) <= skipRows {
		return Table{}, fmt.Errorf("parse %s: %d rows, need a header at row %d", name, len(rows), skipRows+1)
	}
	rows = rows[skipRows:]

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = strings.TrimSpace(col)
	}
	if len(header) == len(canonicalColumns) {
		header = append([]string(nil), canonicalColumns...)
	}

	table := Table{Columns: header, Rows: make([][]string, 0, len(rows)-1)}
	for _, src := range rows[1:] {
		row := make([]string, len(header))
		copy(row, src)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// readText parses a plain-text member. Whitespace-delimited parsing is
// attempted first; when field counts are inconsistent with the header the
// member is re-read as fixed-width columns.
func readText(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	lines := splitLines(text)
	if rows, ok := readWhitespaceDelimited(lines); ok {
		return rows, nil
	}
	return readFixedWidth(lines), nil
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode text member: %w", err)
	}
	return string(decoded), nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	// Trailing newline produces one empty tail entry; drop it.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func readWhitespaceDelimited(lines []string) ([][]string, bool) {
	rows := make([][]string, 0, len(lines))
	for i, line := range lines {
		if i >= skipRows && strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	if len(rows) <= skipRows {
		return rows, true
	}
	// Every data row must agree with the header width, otherwise the
	// member is not genuinely whitespace-delimited.
	width := len(rows[skipRows])
	for _, row := range rows[skipRows+1:] {
		if len(row) != width {
			return nil, false
		}
	}
	return rows, true
}

// readFixedWidth infers column boundaries from the character positions
// that are blank on every line past the boilerplate, then slices each
// line on those boundaries.
func readFixedWidth(lines []string) [][]string {
	sample := lines
	if len(lines) > skipRows {
		sample = lines[skipRows:]
	}

	width := 0
	for _, line := range sample {
		if len(line) > width {
			width = len(line)
		}
	}
	blank := make([]bool, width)
	for i := range blank {
		blank[i] = true
	}
	for _, line := range sample {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for i := 0; i < len(line); i++ {
			if line[i] != ' ' && line[i] != '\t' {
				blank[i] = false
			}
		}
	}

	type span struct{ start, end int }
	var spans []span
	start := -1
	for i := 0; i < width; i++ {
		if !blank[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, width})
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		row := make([]string, 0, len(spans))
		for _, s := range spans {
			begin, end := s.start, s.end
			if begin > len(line) {
				begin = len(line)
			}
			if end > len(line) {
				end = len(line)
			}
			row = append(row, strings.TrimSpace(line[begin:end]))
		}
		rows = append(rows, row)
	}
	return rows
}
