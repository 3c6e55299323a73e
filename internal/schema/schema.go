// Package schema maps raw source rows onto the canonical field set.
// Header matching is tolerant: column names are normalized (BOM and
// non-breaking spaces stripped, Turkish letters folded to ASCII,
// separators collapsed) before comparison, so "İşlem Tarihi",
// "ISLEM_TARIHI" and "islem tarihi" all resolve to the same column.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/posrecon-dev/posrecon/internal/config"
)

// Canonical field names produced by the mapper.
const (
	FieldTransactionDate        = "transaction_date"
	FieldSettlementDate         = "settlement_date"
	FieldGrossAmount            = "gross_amount"
	FieldCommissionAmount       = "commission_amount"
	FieldCommissionAmountAlt    = "commission_amount_alt"
	FieldCommissionInstallment  = "commission_installment"
	FieldCommissionContribution = "commission_contribution"
	FieldCommissionRate         = "commission_rate"
	FieldInstallmentCount       = "installment_count"
	FieldInstallmentNumber      = "installment_number"
	FieldTransactionType        = "transaction_type"
	FieldCardType               = "card_type"
	FieldBlockedAmount          = "blocked_amount"
)

// ErrSchemaMismatch reports that no column-mapping variant matched a
// file's header.
var ErrSchemaMismatch = errors.New("no column mapping variant matched header")

var (
	spaceRun = regexp.MustCompile(`\s+`)
	nonAlnum = regexp.MustCompile(`[^a-z0-9 ]`)

	turkishFold = strings.NewReplacer(
		"ı", "i", "İ", "i",
		"ş", "s", "Ş", "s",
		"ğ", "g", "Ğ", "g",
		"ü", "u", "Ü", "u",
		"ö", "o", "Ö", "o",
		"ç", "c", "Ç", "c",
	)
)

// Fold normalizes a string for tolerant comparison: strips BOM and
// non-breaking spaces, folds Turkish letters to ASCII, lowercases,
// collapses separators, and drops any remaining punctuation.
func Fold(s string) string {
	s = strings.ReplaceAll(s, "\uFEFF", "")
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, "�", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = turkishFold.Replace(s)
	s = strings.NewReplacer("_", " ", "-", " ", "/", " ").Replace(s)
	s = strings.ToLower(s)
	s = spaceRun.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ResolveVariant returns the first variant whose required source
// columns are all present in the header, or ErrSchemaMismatch.
func ResolveVariant(header []string, variants []config.Variant) (config.Variant, error) {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		if f := Fold(col); f != "" {
			present[f] = true
		}
	}

	for _, v := range variants {
		matched := true
		for _, raw := range v.RequiredColumns() {
			if !present[Fold(raw)] {
				matched = false
				break
			}
		}
		if matched {
			return v, nil
		}
	}
	return config.Variant{}, fmt.Errorf("%w (%d variants tried)", ErrSchemaMismatch, len(variants))
}

// RowMapper applies one variant's column mapping to raw records. It is
// built once per file from the header and is side-effect free.
type RowMapper struct {
	fields []string // canonical field per column index, "" = dropped
}

// NewRowMapper resolves each header column to its canonical field.
// Unmapped source columns are dropped. When two header columns fold to
// the same mapped name, the first occurrence wins.
func NewRowMapper(header []string, v config.Variant) *RowMapper {
	byFold := make(map[string]string, len(v.Columns))
	for raw, canonical := range v.Columns {
		byFold[Fold(raw)] = canonical
	}

	fields := make([]string, len(header))
	seen := make(map[string]bool)
	for i, col := range header {
		canonical, ok := byFold[Fold(col)]
		if !ok || seen[canonical] {
			continue
		}
		fields[i] = canonical
		seen[canonical] = true
	}
	return &RowMapper{fields: fields}
}

// Map converts a raw record into a canonical row. Cells beyond the
// header width are dropped; missing trailing cells are left unset.
func (m *RowMapper) Map(record []string) map[string]string {
	row := make(map[string]string, len(m.fields))
	for i, field := range m.fields {
		if field == "" || i >= len(record) {
			continue
		}
		row[field] = strings.TrimSpace(record[i])
	}
	return row
}

// Has reports whether the mapper resolved a source column for the
// canonical field.
func (m *RowMapper) Has(field string) bool {
	for _, f := range m.fields {
		if f == field {
			return true
		}
	}
	return false
}
