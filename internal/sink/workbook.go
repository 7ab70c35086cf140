package sink

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/Verxtics/termsheet-extractor/internal/schema"
)

// Workbook cell layout: headers live on row 2, data starts on row 3,
// matching the desk's master sheet.
const (
	sheetName    = "Database"
	headerRow    = 2
	firstDataRow = 3
)

// Cell number formats per column kind.
const (
	percentFmt = "0.00%"
	priceFmt   = `"$"#,##0.000`
)

// Workbook appends rows to the master xlsx file, creating it with a styled
// header row when absent. A mutex serializes appends; the file is saved
// after every row so a crashed batch loses at most the row in flight.
type Workbook struct {
	mu     sync.Mutex
	path   string
	layout *schema.Layout

	file       *excelize.File
	nextRow    int
	percentSty int
	priceSty   int
	boldSty    int
}

// OpenWorkbook opens or creates the master file for appending.
func OpenWorkbook(path string, layout *schema.Layout) (*Workbook, error) {
	w := &Workbook{path: path, layout: layout}

	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		w.file = f
	} else {
		w.file = excelize.NewFile()
		idx, err := w.file.NewSheet(sheetName)
		if err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		w.file.SetActiveSheet(idx)
		_ = w.file.DeleteSheet("Sheet1")
	}

	if err := w.initStyles(); err != nil {
		return nil, err
	}
	if err := w.ensureHeader(); err != nil {
		return nil, err
	}
	w.nextRow = w.findNextRow()
	return w, nil
}

func (w *Workbook) initStyles() error {
	pct := percentFmt
	price := priceFmt

	var err error
	if w.percentSty, err = w.file.NewStyle(&excelize.Style{CustomNumFmt: &pct}); err != nil {
		return fmt.Errorf("percent style: %w", err)
	}
	if w.priceSty, err = w.file.NewStyle(&excelize.Style{CustomNumFmt: &price}); err != nil {
		return fmt.Errorf("price style: %w", err)
	}
	if w.boldSty, err = w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	return nil
}

func (w *Workbook) ensureHeader() error {
	first, err := w.file.GetCellValue(sheetName, cellName(1, headerRow))
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if first != "" {
		return nil
	}
	for i, name := range w.layout.Names() {
		cell := cellName(i+1, headerRow)
		if err := w.file.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := w.file.SetCellStyle(sheetName, cell, cell, w.boldSty); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}
	return nil
}

// findNextRow locates the first empty data row by scanning the investment
// name column.
func (w *Workbook) findNextRow() int {
	row := firstDataRow
	for {
		v, err := w.file.GetCellValue(sheetName, cellName(1, row))
		if err != nil || v == "" {
			return row
		}
		row++
	}
}

// Append writes one row and saves the workbook.
func (w *Workbook) Append(ctx context.Context, row schema.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	target := w.nextRow
	for i := 0; i < row.Len() && i < len(w.layout.Columns); i++ {
		value := row.Cell(i)
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		cell := cellName(i+1, target)
		if err := w.file.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
		if sty := w.styleFor(w.layout.Columns[i].Kind, value); sty != 0 {
			if err := w.file.SetCellStyle(sheetName, cell, cell, sty); err != nil {
				return fmt.Errorf("style cell %s: %w", cell, err)
			}
		}
	}

	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.nextRow = target + 1
	return nil
}

// styleFor returns the number-format style for numeric cells of formatted
// kinds; currency cells arrive pre-formatted as strings and need none.
func (w *Workbook) styleFor(kind schema.Kind, value any) int {
	if _, isNum := value.(float64); !isNum {
		return 0
	}
	switch kind {
	case schema.KindPercent:
		return w.percentSty
	case schema.KindPrice:
		return w.priceSty
	default:
		return 0
	}
}

// Close saves any pending state and releases the file handle.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
