package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/posrecon-dev/posrecon/internal/config"
	"github.com/posrecon-dev/posrecon/internal/model"
	"github.com/posrecon-dev/posrecon/internal/numparse"
	"github.com/posrecon-dev/posrecon/internal/schema"
)

// CellError is a row-level parse failure naming the offending column.
type CellError struct {
	Column string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("column %s: %v", e.Column, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// buildFunc converts one canonical row into a Transaction. Each bank
// with quirks beyond the declarative config gets its own buildFunc;
// everything else shares buildGeneric.
type buildFunc func(row map[string]string, cfg config.BankConfig) (model.Transaction, *CellError)

var builders = map[string]buildFunc{
	"akbank": buildAkbank,
	"ykb":    buildYKB,
}

// builderFor returns the build function for a bank key.
func builderFor(key string) buildFunc {
	if b, ok := builders[key]; ok {
		return b
	}
	return buildGeneric
}

// buildGeneric handles every source whose quirks are fully expressed
// by config (delimiter, encoding, percent rates, absolute amounts,
// installment inference from the transaction type).
func buildGeneric(row map[string]string, cfg config.BankConfig) (model.Transaction, *CellError) {
	var t model.Transaction

	date, cerr := parseDate(row, schema.FieldTransactionDate, cfg, true)
	if cerr != nil {
		return t, cerr
	}
	t.Date = date
	t.SettlementDate, cerr = parseDate(row, schema.FieldSettlementDate, cfg, false)
	if cerr != nil {
		return t, cerr
	}

	if t.Gross, cerr = parseAmount(row, schema.FieldGrossAmount); cerr != nil {
		return t, cerr
	}
	if t.Commission, cerr = parseAmount(row, schema.FieldCommissionAmount); cerr != nil {
		return t, cerr
	}
	if cfg.AbsoluteAmounts {
		t.Gross = t.Gross.Abs()
		t.Commission = t.Commission.Abs()
	}

	if t.Blocked, cerr = parseAmount(row, schema.FieldBlockedAmount); cerr != nil {
		return t, cerr
	}
	t.CardType = row[schema.FieldCardType]

	if cerr = parseInstallments(row, cfg, &t); cerr != nil {
		return t, cerr
	}
	if cerr = resolveRate(row, cfg, &t); cerr != nil {
		return t, cerr
	}
	return t, nil
}

// buildAkbank: KOMISYON_TUTAR is usually zero in Akbank exports; the
// real cut is EO_KES_TUTAR, and the rate is always derived from it.
func buildAkbank(row map[string]string, cfg config.BankConfig) (model.Transaction, *CellError) {
	t, cerr := buildGeneric(row, cfg)
	if cerr != nil {
		return t, cerr
	}

	alt, cerr := parseAmount(row, schema.FieldCommissionAmountAlt)
	if cerr != nil {
		return t, cerr
	}
	t.Commission = alt
	t.Rate = derivedRate(t.Gross, t.Commission)
	t.RateSource = model.RateDerived
	return t, nil
}

// buildYKB: the current Yapı Kredi layout splits the commission across
// two columns and reports refunds as positive amounts flagged by the
// message type, so signs are restored here. The legacy layout carries
// a plain commission column and falls through to the generic path.
func buildYKB(row map[string]string, cfg config.BankConfig) (model.Transaction, *CellError) {
	if _, ok := row[schema.FieldCommissionInstallment]; !ok {
		return buildGeneric(row, cfg)
	}

	t, cerr := buildGeneric(row, cfg)
	if cerr != nil {
		return t, cerr
	}

	installment, cerr := parseAmount(row, schema.FieldCommissionInstallment)
	if cerr != nil {
		return t, cerr
	}
	contribution, cerr := parseAmount(row, schema.FieldCommissionContribution)
	if cerr != nil {
		return t, cerr
	}
	t.Commission = installment.Add(contribution).Abs()

	if isRefundRow(row, cfg) {
		t.Gross = t.Gross.Abs().Neg()
		t.Commission = t.Commission.Neg()
	}
	t.Rate = derivedRate(t.Gross, t.Commission)
	t.RateSource = model.RateDerived
	return t, nil
}

func isRefundRow(row map[string]string, cfg config.BankConfig) bool {
	field := cfg.Classify.Field
	if field == "" {
		field = schema.FieldTransactionType
	}
	return schema.Fold(row[field]) != "" &&
		containsAny(schema.Fold(row[field]), cfg.Classify.Markers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, schema.Fold(m)) {
			return true
		}
	}
	return false
}

func parseAmount(row map[string]string, field string) (decimal.Decimal, *CellError) {
	d, err := numparse.Amount(row[field])
	if err != nil {
		return decimal.Zero, &CellError{Column: field, Err: err}
	}
	return d, nil
}

func parseDate(row map[string]string, field string, cfg config.BankConfig, required bool) (time.Time, *CellError) {
	raw := row[field]
	if raw == "" {
		if required {
			return time.Time{}, &CellError{Column: field, Err: fmt.Errorf("missing required date")}
		}
		return time.Time{}, nil
	}

	for _, layout := range cfg.DateFormats {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
		// Exports sometimes append a time-of-day part.
		if i := indexSpace(raw); i > 0 {
			if d, err := time.Parse(layout, raw[:i]); err == nil {
				return d, nil
			}
		}
	}
	return time.Time{}, &CellError{Column: field, Err: fmt.Errorf("unparseable date %q", raw)}
}

// parseInstallments fills the installment count and index. Sources
// without an installment column infer the count from the transaction
// type: a configured single-payment keyword means one payment,
// anything else means an installment sale.
func parseInstallments(row map[string]string, cfg config.BankConfig, t *model.Transaction) *CellError {
	if raw, ok := row[schema.FieldInstallmentCount]; ok {
		count, index, err := numparse.Installments(raw)
		if err != nil {
			return &CellError{Column: schema.FieldInstallmentCount, Err: err}
		}
		t.Installments, t.InstallmentNo = count, index
		if raw, ok := row[schema.FieldInstallmentNumber]; ok && raw != "" {
			if _, index, err := numparse.Installments(raw); err == nil {
				t.InstallmentNo = index
			}
		}
		return nil
	}

	t.Installments, t.InstallmentNo = 1, 1
	if len(cfg.SinglePaymentTypes) > 0 {
		kind := schema.Fold(row[schema.FieldTransactionType])
		single := false
		for _, s := range cfg.SinglePaymentTypes {
			if strings.Contains(kind, schema.Fold(s)) {
				single = true
				break
			}
		}
		if !single && kind != "" {
			t.Installments = 2
		}
	}
	return nil
}

// resolveRate fills the actual rate, preferring the file's rate column
// and deriving commission/gross when the file has none.
func resolveRate(row map[string]string, cfg config.BankConfig, t *model.Transaction) *CellError {
	if raw, ok := row[schema.FieldCommissionRate]; ok && raw != "" {
		rate, err := numparse.Rate(raw, cfg.RatePercent)
		if err != nil {
			return &CellError{Column: schema.FieldCommissionRate, Err: err}
		}
		if !rate.IsZero() {
			t.Rate = rate
			t.RateSource = model.RateFromFile
			return nil
		}
	}
	t.Rate = derivedRate(t.Gross, t.Commission)
	t.RateSource = model.RateDerived
	return nil
}

func derivedRate(gross, commission decimal.Decimal) decimal.Decimal {
	if gross.IsZero() {
		return decimal.Zero
	}
	return commission.Div(gross).Abs().Round(6)
}

func indexSpace(s string) int {
	for i, r := range s {
		if r == ' ' || r == '\t' {
			return i
		}
	}
	return -1
}
