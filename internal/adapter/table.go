package adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/posrecon-dev/posrecon/internal/config"
)

// readTable reads a source file into rows of cells, decoding the
// declared encoding and skipping any preamble rows above the header.
// Everything outside this file treats the source as opaque bytes.
func readTable(r io.Reader, fileName string, cfg config.BankConfig) ([][]string, error) {
	if isExcel(fileName) {
		return readXLSX(r, cfg.SkipRows)
	}
	return readCSV(r, cfg)
}

func isExcel(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

func readCSV(r io.Reader, cfg config.BankConfig) ([][]string, error) {
	decoded, err := decodeReader(r, cfg.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1 // ragged rows are handled by the mapper
	cr.LazyQuotes = true
	if cfg.Delimiter != "" {
		cr.Comma = []rune(cfg.Delimiter)[0]
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return skipRows(rows, cfg.SkipRows), nil
}

func readXLSX(r io.Reader, skip int) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return skipRows(rows, skip), nil
}

func skipRows(rows [][]string, n int) [][]string {
	if n <= 0 {
		return rows
	}
	if n >= len(rows) {
		return nil
	}
	return rows[n:]
}
