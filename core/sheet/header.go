package sheet

import (
	"fmt"
	"strings"

	"asset-reconciler/core/table"
)

// buildTable turns raw rows into a table. rows must already exclude skipped rows.
func buildTable(name string, rows [][]string, opts Options) (*table.Table, error) {
	n := opts.headerRows()
	if len(rows) < n {
		return nil, fmt.Errorf("table %s has no header row", name)
	}

	var header []string
	if n == 2 {
		header = mergeHeader(rows[0], rows[1])
	} else {
		header = trimAll(rows[0])
	}
	header = uniqueNames(header)

	t := table.New(name, header...)
	for _, row := range rows[n:] {
		if blankRow(row) {
			continue
		}
		rec := make(table.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// mergeHeader combines a group row with a field row as "group-field".
func mergeHeader(top, bottom []string) []string {
	width := len(top)
	if len(bottom) > width {
		width = len(bottom)
	}
	out := make([]string, width)
	for i := 0; i < width; i++ {
		t, b := strings.TrimSpace(at(top, i)), strings.TrimSpace(at(bottom, i))
		switch {
		case t == "":
			out[i] = b
		case b == "" || b == t:
			out[i] = t
		default:
			out[i] = t + "-" + b
		}
	}
	return out
}

// fillRight carries each non-blank cell into the blank cells to its right. It stands in
// for merge information that CSV exports lose.
func fillRight(row []string) []string {
	out := make([]string, len(row))
	last := ""
	for i, c := range row {
		if strings.TrimSpace(c) != "" {
			last = c
		}
		out[i] = last
	}
	return out
}

// uniqueNames names blank headers by position and suffixes repeated ones.
func uniqueNames(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("列%d", i+1)
		}
		if c, ok := seen[h]; ok {
			seen[h] = c + 1
			h = fmt.Sprintf("%s.%d", h, c+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func at(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func skip(rows [][]string, n int) [][]string {
	if n <= 0 {
		return rows
	}
	if n >= len(rows) {
		return nil
	}
	return rows[n:]
}
