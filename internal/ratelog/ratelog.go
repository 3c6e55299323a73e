// Package ratelog keeps an append-only CSV audit trail of commission
// rate changes. Every mutation of the rate table lands here before the
// table itself is written, so the log never misses a change that made
// it to disk.
package ratelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Actions recorded in the log.
const (
	ActionSet    = "set"
	ActionImport = "import"
)

// Entry is one rate change.
type Entry struct {
	ID           string
	Timestamp    time.Time
	Actor        string
	Action       string
	Bank         string
	Installments int
	OldRate      decimal.Decimal
	NewRate      decimal.Decimal
}

// Header is the CSV header for rates-log.csv.
const Header = "id,timestamp,actor,action,bank,installments,old_rate,new_rate"

const (
	numFields       = 8
	logFile         = "rates-log.csv"
	colID           = 0
	colTimestamp    = 1
	colActor        = 2
	colAction       = 3
	colBank         = 4
	colInstallments = 5
	colOldRate      = 6
	colNewRate      = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = e.Action
	row[colBank] = e.Bank
	row[colInstallments] = strconv.Itoa(e.Installments)
	row[colOldRate] = e.OldRate.String()
	row[colNewRate] = e.NewRate.String()
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	installments, err := strconv.Atoi(record[colInstallments])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing installments %q: %w", record[colInstallments], err)
	}
	oldRate, err := decimal.NewFromString(record[colOldRate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing old rate %q: %w", record[colOldRate], err)
	}
	newRate, err := decimal.NewFromString(record[colNewRate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing new rate %q: %w", record[colNewRate], err)
	}

	return Entry{
		ID:           record[colID],
		Timestamp:    ts,
		Actor:        record[colActor],
		Action:       record[colAction],
		Bank:         record[colBank],
		Installments: installments,
		OldRate:      oldRate,
		NewRate:      newRate,
	}, nil
}

// Append writes entries to <dir>/rates-log.csv, creating the file and
// header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening rate log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/rates-log.csv, oldest first.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	path := filepath.Join(dir, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening rate log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = numFields

	var entries []Entry
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rate log: %w", err)
		}
		line++
		if line == 1 && record[colID] == "id" {
			continue
		}
		e, err := UnmarshalEntry(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
