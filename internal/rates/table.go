// Package rates holds the agreed commission rate table: per bank, per
// installment count, the fractional rate the bank contract promises.
// The table is the reference side of verification; the bank files are
// the actual side.
package rates

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/posrecon-dev/posrecon/internal/schema"
)

// ErrRateNotFound reports that the table has no rate for a bank and
// installment count. Verification reports these rows as "rate
// undefined" rather than as mismatches.
var ErrRateNotFound = errors.New("rate not found")

// Rate is one (bank, installments) cell of the table.
type Rate struct {
	Bank         string
	Installments int
	Rate         decimal.Decimal
}

// Table is the in-memory rate table. All methods are safe for
// concurrent use; mutations go through Set and bump the version.
type Table struct {
	mu      sync.RWMutex
	version int
	banks   map[string]*bankEntry
	aliases map[string]string // folded alias -> bank key
}

type bankEntry struct {
	aliases []string
	rates   map[int]decimal.Decimal
}

// NewTable returns an empty table at version 0.
func NewTable() *Table {
	return &Table{
		banks:   make(map[string]*bankEntry),
		aliases: make(map[string]string),
	}
}

// Version returns the table's mutation counter. Each Set or Replace
// increments it, so readers can tell which table version produced a
// verification run.
func (t *Table) Version() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Banks returns the configured bank keys, sorted.
func (t *Table) Banks() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.banks))
	for key := range t.banks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// resolveKey maps a bank name to a table key: exact key first, then
// declared aliases, then a folded substring match so "T. VAKIFLAR
// BANKASI T.A.O." still finds "vakifbank".
func (t *Table) resolveKey(bank string) (string, bool) {
	if _, ok := t.banks[bank]; ok {
		return bank, true
	}
	folded := schema.Fold(bank)
	if key, ok := t.aliases[folded]; ok {
		return key, true
	}
	if len(folded) < 3 {
		return "", false
	}
	keys := make([]string, 0, len(t.banks))
	for key := range t.banks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fk := schema.Fold(key)
		if len(fk) >= 3 && (strings.Contains(folded, fk) || strings.Contains(fk, folded)) {
			return key, true
		}
	}
	return "", false
}

// Lookup returns the agreed rate for a bank and installment count, or
// ErrRateNotFound when either the bank or the specific count has no
// entry.
func (t *Table) Lookup(bank string, installments int) (decimal.Decimal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	key, ok := t.resolveKey(bank)
	if !ok {
		return decimal.Zero, fmt.Errorf("bank %q: %w", bank, ErrRateNotFound)
	}
	rate, ok := t.banks[key].rates[installments]
	if !ok {
		return decimal.Zero, fmt.Errorf("bank %q, %d installments: %w", bank, installments, ErrRateNotFound)
	}
	return rate, nil
}

// Get returns the rate without alias resolution, for exact-key reads.
func (t *Table) Get(bank string, installments int) (decimal.Decimal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.banks[bank]
	if !ok {
		return decimal.Zero, false
	}
	rate, ok := entry.rates[installments]
	return rate, ok
}

// Set stores a rate, creating the bank entry if needed, and returns
// the previous rate. The new value is visible to Lookup immediately.
func (t *Table) Set(bank string, installments int, rate decimal.Decimal) (old decimal.Decimal, existed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.banks[bank]
	if !ok {
		entry = &bankEntry{rates: make(map[int]decimal.Decimal)}
		t.banks[bank] = entry
	}
	old, existed = entry.rates[installments]
	entry.rates[installments] = rate
	t.version++
	return old, existed
}

// SetAliases replaces a bank's alias list.
func (t *Table) SetAliases(bank string, aliases []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.banks[bank]
	if !ok {
		entry = &bankEntry{rates: make(map[int]decimal.Decimal)}
		t.banks[bank] = entry
	}
	for _, a := range entry.aliases {
		delete(t.aliases, schema.Fold(a))
	}
	entry.aliases = aliases
	for _, a := range aliases {
		if f := schema.Fold(a); f != "" {
			t.aliases[f] = bank
		}
	}
	t.version++
}

// Replace swaps in another table's contents wholesale, keeping this
// table's identity and bumping its version once.
func (t *Table) Replace(other *Table) {
	snapshot := other.All()
	aliasesByBank := other.aliasesByBank()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.banks = make(map[string]*bankEntry)
	t.aliases = make(map[string]string)
	for _, r := range snapshot {
		entry, ok := t.banks[r.Bank]
		if !ok {
			entry = &bankEntry{rates: make(map[int]decimal.Decimal)}
			t.banks[r.Bank] = entry
		}
		entry.rates[r.Installments] = r.Rate
	}
	for bank, aliases := range aliasesByBank {
		entry, ok := t.banks[bank]
		if !ok {
			entry = &bankEntry{rates: make(map[int]decimal.Decimal)}
			t.banks[bank] = entry
		}
		entry.aliases = aliases
		for _, a := range aliases {
			if f := schema.Fold(a); f != "" {
				t.aliases[f] = bank
			}
		}
	}
	t.version++
}

// All returns every rate in the table, sorted by bank then
// installment count.
func (t *Table) All() []Rate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Rate
	for bank, entry := range t.banks {
		for installments, rate := range entry.rates {
			out = append(out, Rate{Bank: bank, Installments: installments, Rate: rate})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bank != out[j].Bank {
			return out[i].Bank < out[j].Bank
		}
		return out[i].Installments < out[j].Installments
	})
	return out
}

func (t *Table) aliasesByBank() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string][]string, len(t.banks))
	for bank, entry := range t.banks {
		if len(entry.aliases) > 0 {
			out[bank] = append([]string(nil), entry.aliases...)
		}
	}
	return out
}

// document is the on-disk YAML shape of the table. Rates are plain
// floats in the file; the table holds decimals.
type document struct {
	Banks map[string]bankDocument `yaml:"banks"`
}

type bankDocument struct {
	Aliases []string        `yaml:"aliases,omitempty"`
	Rates   map[int]float64 `yaml:"rates"`
}

// Encode writes the table as YAML.
func (t *Table) Encode(w io.Writer) error {
	doc := document{Banks: make(map[string]bankDocument)}
	for bank, aliases := range t.aliasesByBank() {
		bd := doc.Banks[bank]
		bd.Aliases = aliases
		doc.Banks[bank] = bd
	}
	for _, r := range t.All() {
		bd, ok := doc.Banks[r.Bank]
		if !ok {
			bd = bankDocument{}
		}
		if bd.Rates == nil {
			bd.Rates = make(map[int]float64)
		}
		bd.Rates[r.Installments], _ = r.Rate.Float64()
		doc.Banks[r.Bank] = bd
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding rate table: %w", err)
	}
	return enc.Close()
}

// Decode parses a YAML rate table.
func Decode(r io.Reader) (*Table, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding rate table: %w", err)
	}

	t := NewTable()
	for bank, bd := range doc.Banks {
		for installments, rate := range bd.Rates {
			t.Set(bank, installments, decimal.NewFromFloat(rate))
		}
		if len(bd.Aliases) > 0 {
			t.SetAliases(bank, bd.Aliases)
		}
		if len(bd.Rates) == 0 && len(bd.Aliases) == 0 {
			t.mu.Lock()
			if _, ok := t.banks[bank]; !ok {
				t.banks[bank] = &bankEntry{rates: make(map[int]decimal.Decimal)}
			}
			t.mu.Unlock()
		}
	}
	t.mu.Lock()
	t.version = 0
	t.mu.Unlock()
	return t, nil
}
