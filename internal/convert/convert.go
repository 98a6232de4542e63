// Package convert extracts spreadsheet sheets into CSV files.
package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/xuri/excelize/v2"

	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/logging"
)

// Defaults for the Superstore export.
var (
	DefaultInput     = filepath.Join("data", "Sample - Superstore.xlsx")
	DefaultSheets    = []string{"Orders", "Returns"}
	DefaultOutputDir = "data"
)

// FileNotFoundError is returned when the input workbook does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

// SheetNotFoundError is returned for a sheet the workbook does not contain.
type SheetNotFoundError struct {
	Sheet string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found in workbook", e.Sheet)
}

// CSVName is the file name a sheet is written to: lower case, spaces
// replaced by underscores.
func CSVName(sheet string) string {
	return strings.ToLower(strings.ReplaceAll(sheet, " ", "_")) + ".csv"
}

// ExtractSheets writes each named sheet of the workbook at path to its own
// UTF-8 CSV file in outDir and returns the paths written. Nothing is written
// when the workbook is missing. Files written before a failing sheet are kept.
func ExtractSheets(path string, sheets []string, outDir string, logger log.Logger) ([]string, error) {
	logger = logging.OrNop(logger)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			level.Warn(logger).Log("msg", "failed to close workbook", "err", err)
		}
	}()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, sheet := range sheets {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			return written, &SheetNotFoundError{Sheet: sheet}
		}

		out := filepath.Join(outDir, CSVName(sheet))
		n, err := writeSheet(f, sheet, out)
		if err != nil {
			return written, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		level.Info(logger).Log("msg", "sheet converted", "sheet", sheet, "rows", n, "output", out)
		written = append(written, out)
	}
	return written, nil
}

// writeSheet streams one sheet to a CSV file and returns the number of data
// rows. Rows shorter than the header are padded with empty cells.
func writeSheet(f *excelize.File, sheet, out string) (int, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	file, err := os.Create(out)
	if err != nil {
		return 0, err
	}

	count, err := writeRows(csv.NewWriter(file), rows)
	if err != nil {
		_ = file.Close()
		return count, err
	}
	if err := file.Close(); err != nil {
		return count, fmt.Errorf("closing %s: %w", out, err)
	}
	return count, nil
}

// writeRows copies rows into w, counting every row after the header.
func writeRows(w *csv.Writer, rows *excelize.Rows) (int, error) {
	width := -1
	count := 0
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return count, err
		}
		if width < 0 {
			width = len(cols)
		} else {
			count++
		}
		for len(cols) < width {
			cols = append(cols, "")
		}
		if err := w.Write(cols); err != nil {
			return count, err
		}
	}
	if err := rows.Error(); err != nil {
		return count, err
	}

	w.Flush()
	return count, w.Error()
}
