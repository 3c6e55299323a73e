// Package pipeline drives a full reconciliation run: discover export
// files, parse each through its bank adapter, verify commissions
// against the rate table, and aggregate the results. Files are
// independent, so they are parsed concurrently and one broken file
// never takes down the run.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/posrecon-dev/posrecon/internal/adapter"
	"github.com/posrecon-dev/posrecon/internal/aggregate"
	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/model"
	"github.com/posrecon-dev/posrecon/internal/rates"
	"github.com/posrecon-dev/posrecon/internal/verify"
)

// FileReport is the outcome of one source file.
type FileReport struct {
	File         string
	Bank         string
	Variant      string
	Transactions int
	Skipped      []*adapter.RowError
	Err          error

	parsed []model.Transaction
}

// RunResult is everything a reconciliation run produced.
type RunResult struct {
	Files        []FileReport
	Transactions []model.VerifiedTransaction

	ByBank             []model.Summary
	ByBankPeriod       []model.Summary
	ByBankInstallments []model.Summary

	RateVersion int
}

// MismatchedCount returns how many verified sales failed the rate
// check across the whole run.
func (r *RunResult) MismatchedCount() int {
	n := 0
	for _, txn := range r.Transactions {
		if !txn.RateMatch {
			n++
		}
	}
	return n
}

// Pipeline wires adapters, the verifier, and the aggregator together.
type Pipeline struct {
	cfg    *config.Config
	table  *rates.Table
	logger *log.Logger
}

// New creates a Pipeline.
func New(cfg *config.Config, table *rates.Table, logger *log.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, table: table, logger: logger}
}

// Run processes every recognizable export file in dir. Per-file
// failures are reported, logged, and isolated; Run itself only fails
// when the directory cannot be read or contains no data files at all.
func (p *Pipeline) Run(dir string) (*RunResult, error) {
	files, err := dataFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no export files found in %s", dir)
	}

	version := p.table.Version()
	reports := make([]FileReport, len(files))

	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = p.processFile(path)
		}()
	}
	wg.Wait()

	verifier := verify.New(p.table, p.cfg.Verification.Epsilon)

	res := &RunResult{Files: reports, RateVersion: version}

	var txns []model.Transaction
	for _, rep := range reports {
		if rep.Err != nil {
			p.logger.Warn("file failed", "file", rep.File, "err", rep.Err)
			continue
		}
		p.logger.Info("file parsed",
			"file", rep.File, "bank", rep.Bank,
			"transactions", rep.Transactions, "skipped", len(rep.Skipped))
		txns = append(txns, rep.parsed...)
	}
	res.Transactions = verifier.VerifyAll(txns)

	successful := aggregate.FilterSuccessful(res.Transactions)
	res.ByBank = aggregate.Aggregate(successful, aggregate.ByBank)
	res.ByBankPeriod = aggregate.Aggregate(successful, aggregate.ByBankPeriod)
	res.ByBankInstallments = aggregate.Aggregate(successful, aggregate.ByBankInstallments)

	return res, nil
}

func (p *Pipeline) processFile(path string) FileReport {
	rep := FileReport{File: filepath.Base(path)}

	bank, err := adapter.DetectFile(path, p.cfg)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Bank = bank

	f, err := os.Open(path)
	if err != nil {
		rep.Err = fmt.Errorf("opening %s: %w", path, err)
		return rep
	}
	defer f.Close()

	a := adapter.New(bank, p.cfg.Resolve(p.cfg.Banks[bank]))
	result, err := a.Parse(f, path)
	if err != nil {
		rep.Err = err
		return rep
	}

	rep.Variant = result.Variant
	rep.Transactions = len(result.Transactions)
	rep.Skipped = result.Skipped
	rep.parsed = result.Transactions
	return rep
}

func dataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx", ".xlsm", ".xls":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
