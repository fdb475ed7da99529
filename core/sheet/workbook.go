package sheet

import (
	"fmt"
	"io"

	"asset-reconciler/core/table"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads one worksheet of an xlsx workbook.
func ReadWorkbook(r io.Reader, opts Options) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	name := opts.Sheet
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		name = list[0]
	} else if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", name)
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	if err := fillMerged(f, name, rows, opts.SkipRows, opts.SkipRows+opts.headerRows()); err != nil {
		return nil, err
	}

	tableName := opts.Name
	if tableName == "" {
		tableName = name
	}
	return buildTable(tableName, skip(rows, opts.SkipRows), opts)
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// fillMerged copies the value of every merged range into all of its cells within rows
// [from, to). excelize reports a merged value only in the top-left cell.
func fillMerged(f *excelize.File, sheet string, rows [][]string, from, to int) error {
	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return fmt.Errorf("failed to read merged cells of %q: %w", sheet, err)
	}
	for _, m := range merged {
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return err
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return err
		}
		for r := r1 - 1; r < r2 && r < len(rows); r++ {
			if r < from || r >= to {
				continue
			}
			for len(rows[r]) < c2 {
				rows[r] = append(rows[r], "")
			}
			for c := c1 - 1; c < c2; c++ {
				rows[r][c] = m.GetCellValue()
			}
		}
	}
	return nil
}
