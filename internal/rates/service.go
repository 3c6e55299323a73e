package rates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/posrecon-dev/posrecon/internal/ratelog"
)

// ValidationError reports a rate value outside the accepted range.
type ValidationError struct {
	Bank         string
	Installments int
	Rate         decimal.Decimal
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rate %s for %s/%d installments: must be >= 0 and < 1",
		e.Rate, e.Bank, e.Installments)
}

var one = decimal.NewFromInt(1)

// validateRate accepts fractional rates in [0, 1). A commission of
// 100% or more is always a data-entry mistake (someone typed the
// percent form).
func validateRate(bank string, installments int, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
		return &ValidationError{Bank: bank, Installments: installments, Rate: rate}
	}
	return nil
}

// Service owns the rates file: it serializes mutations, writes a
// timestamped backup before every change, and records each change in
// the audit log next to the file.
type Service struct {
	mu    sync.Mutex
	path  string
	actor string
	table *Table
}

// Open loads the rates file at path, or the shipped defaults when the
// file does not exist yet. actor is recorded on every logged change.
func Open(path, actor string) (*Service, error) {
	s := &Service{path: path, actor: actor}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		s.table = DefaultTable()
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening rates file: %w", err)
	}
	defer f.Close()

	table, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.table = table
	return s, nil
}

// Table returns the live table for lookups. Mutations still go
// through the service.
func (s *Service) Table() *Table { return s.table }

// Path returns the rates file location.
func (s *Service) Path() string { return s.path }

// Update sets one rate, backing up the current file and logging the
// change first. The new rate is visible to lookups as soon as Update
// returns.
func (s *Service) Update(bank string, installments int, rate decimal.Decimal) error {
	if err := validateRate(bank, installments, rate); err != nil {
		return err
	}
	if installments < 1 {
		return fmt.Errorf("installment count must be >= 1, got %d", installments)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backup(); err != nil {
		return err
	}

	old, _ := s.table.Get(bank, installments)
	entry := ratelog.Entry{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Actor:        s.actor,
		Action:       ratelog.ActionSet,
		Bank:         bank,
		Installments: installments,
		OldRate:      old,
		NewRate:      rate,
	}
	if err := ratelog.Append(filepath.Dir(s.path), []ratelog.Entry{entry}); err != nil {
		return fmt.Errorf("logging rate change: %w", err)
	}

	s.table.Set(bank, installments, rate)
	return s.save()
}

// Import replaces the whole table from a YAML document. The incoming
// table is fully validated before anything is touched; a bad document
// leaves the current table as it was.
func (s *Service) Import(r io.Reader) (int, error) {
	incoming, err := Decode(r)
	if err != nil {
		return 0, err
	}
	rates := incoming.All()
	if len(rates) == 0 {
		return 0, fmt.Errorf("imported table has no rates")
	}
	for _, rt := range rates {
		if err := validateRate(rt.Bank, rt.Installments, rt.Rate); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backup(); err != nil {
		return 0, err
	}

	entry := ratelog.Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Actor:     s.actor,
		Action:    ratelog.ActionImport,
		Bank:      "all",
	}
	if err := ratelog.Append(filepath.Dir(s.path), []ratelog.Entry{entry}); err != nil {
		return 0, fmt.Errorf("logging import: %w", err)
	}

	s.table.Replace(incoming)
	if err := s.save(); err != nil {
		return 0, err
	}
	return len(rates), nil
}

// ImportURL fetches a YAML rate table over HTTP and imports it.
func (s *Service) ImportURL(url string) (int, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 0, fmt.Errorf("fetching rate table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching rate table: %s returned %s", url, resp.Status)
	}
	return s.Import(resp.Body)
}

// Export formats. CSV rows are bank,installments,rate.
const (
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// CSVHeader is the header row of CSV rate exports.
const CSVHeader = "bank,installments,rate"

// Export writes the current table to w in the given format.
func (s *Service) Export(w io.Writer, format string) error {
	switch format {
	case FormatYAML:
		return s.table.Encode(w)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
			return err
		}
		for _, r := range s.table.All() {
			row := []string{r.Bank, strconv.Itoa(r.Installments), r.Rate.String()}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// History returns the most recent rate changes, newest first. A limit
// of 0 returns everything.
func (s *Service) History(limit int) ([]ratelog.Entry, error) {
	entries, err := ratelog.Read(filepath.Dir(s.path))
	if err != nil {
		return nil, err
	}
	// The log is append-only, so file order is chronological.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// DiffKind classifies one row of a table comparison.
type DiffKind string

const (
	DiffChanged       DiffKind = "changed"
	DiffMissingLocal  DiffKind = "missing locally"
	DiffMissingRemote DiffKind = "missing remotely"
)

// Diff is one disagreement between two rate tables.
type Diff struct {
	Bank         string
	Installments int
	Local        decimal.Decimal
	Remote       decimal.Decimal
	Kind         DiffKind
}

// Compare reports every cell where the local table and another table
// disagree, sorted by bank then installment count.
func (s *Service) Compare(other *Table) []Diff {
	local := make(map[string]Rate)
	for _, r := range s.table.All() {
		local[diffKey(r.Bank, r.Installments)] = r
	}
	remote := make(map[string]Rate)
	for _, r := range other.All() {
		remote[diffKey(r.Bank, r.Installments)] = r
	}

	var diffs []Diff
	for key, lr := range local {
		rr, ok := remote[key]
		if !ok {
			diffs = append(diffs, Diff{Bank: lr.Bank, Installments: lr.Installments, Local: lr.Rate, Kind: DiffMissingRemote})
			continue
		}
		if !lr.Rate.Equal(rr.Rate) {
			diffs = append(diffs, Diff{Bank: lr.Bank, Installments: lr.Installments, Local: lr.Rate, Remote: rr.Rate, Kind: DiffChanged})
		}
	}
	for key, rr := range remote {
		if _, ok := local[key]; !ok {
			diffs = append(diffs, Diff{Bank: rr.Bank, Installments: rr.Installments, Remote: rr.Rate, Kind: DiffMissingLocal})
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Bank != diffs[j].Bank {
			return diffs[i].Bank < diffs[j].Bank
		}
		return diffs[i].Installments < diffs[j].Installments
	})
	return diffs
}

func diffKey(bank string, installments int) string {
	return bank + "\x00" + strconv.Itoa(installments)
}

// Save writes the current table to the rates file without logging a
// change, for first-time scaffolding.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *Service) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating rates dir: %w", err)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating rates file: %w", err)
	}
	defer f.Close()
	return s.table.Encode(f)
}

// backup copies the current rates file aside before a mutation. A
// missing file (first write) needs no backup.
func (s *Service) backup() error {
	src, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening rates file for backup: %w", err)
	}
	defer src.Close()

	// The uuid suffix keeps two mutations within the same second from
	// overwriting each other's backup.
	name := fmt.Sprintf("rates.backup.%s.%s.yaml", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	dst, err := os.Create(filepath.Join(filepath.Dir(s.path), name))
	if err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}
