// Package adapter parses one bank's raw export file into canonical
// transactions. Each bank's quirks stay behind the shared contract:
// parse a file, get canonical rows plus the reasons for any skipped
// ones. Adapters share no mutable state, so files parse concurrently.
package adapter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/posrecon-dev/posrecon/internal/classify"
	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/model"
	"github.com/posrecon-dev/posrecon/internal/schema"
)

// RowError records a skipped source row and why it was skipped.
type RowError struct {
	File   string
	Row    int // 1-based row number in the source file
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s row %d, column %s: %v", e.File, e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result holds one file's parsed transactions and skipped-row reasons.
type Result struct {
	Bank         string
	File         string
	Variant      string
	Transactions []model.Transaction
	Skipped      []*RowError
}

// Adapter parses files for a single bank configuration.
type Adapter struct {
	key        string
	cfg        config.BankConfig
	classifier *classify.Classifier
	build      buildFunc
}

// New creates an Adapter for a bank. The config must already be
// resolved against the file-level defaults.
func New(key string, cfg config.BankConfig) *Adapter {
	return &Adapter{
		key:        key,
		cfg:        cfg,
		classifier: classify.New(cfg.Classify),
		build:      builderFor(key),
	}
}

// Parse reads a raw export file and produces canonical transactions.
// Row-level failures follow the configured policy: the default skips
// the row and records the reason, "abort" fails the whole file. A
// header no variant can serve fails with schema.ErrSchemaMismatch.
func (a *Adapter) Parse(r io.Reader, fileName string) (*Result, error) {
	rows, err := readTable(r, fileName, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", fileName, schema.ErrSchemaMismatch)
	}

	header := rows[0]
	variant, err := schema.ResolveVariant(header, a.cfg.Variants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	mapper := schema.NewRowMapper(header, variant)

	base := filepath.Base(fileName)
	res := &Result{Bank: a.key, File: base, Variant: variant.Name}

	for i, rec := range rows[1:] {
		rowNum := a.cfg.SkipRows + i + 2
		if blankRecord(rec) {
			continue
		}

		row := mapper.Map(rec)
		txn, cerr := a.build(row, a.cfg)
		if cerr != nil {
			rerr := &RowError{File: base, Row: rowNum, Column: cerr.Column, Err: cerr.Err}
			if a.cfg.OnRowError == config.OnRowErrorAbort {
				return nil, rerr
			}
			res.Skipped = append(res.Skipped, rerr)
			continue
		}

		txn.Bank = a.key
		txn.BankName = a.cfg.DisplayName
		txn.SourceFile = base
		txn.SourceRow = rowNum
		txn.Category = a.classifier.Classify(row)
		// The net amount is always computed, never trusted from the
		// source.
		txn.Net = txn.Gross.Sub(txn.Commission)

		res.Transactions = append(res.Transactions, txn)
	}
	return res, nil
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if cell != "" {
			return false
		}
	}
	return true
}
