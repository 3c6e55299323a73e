package model

import "github.com/shopspring/decimal"

// Summary is one aggregation row. The key fields that were not part of
// the requested grouping are left at their zero values. Summaries are
// derived and disposable: recomputed per request, never persisted.
type Summary struct {
	Bank         string // empty when not grouped by bank
	Period       string // "YYYY-MM", empty when not grouped by period
	Installments int    // 0 when not grouped by installment bucket

	TotalGross       decimal.Decimal
	TotalCommission  decimal.Decimal
	TotalExpected    decimal.Decimal
	TotalDiff        decimal.Decimal
	TotalNet         decimal.Decimal
	TransactionCount int
	MismatchedCount  int
}

// CommissionPct returns the effective commission percentage of the
// group, zero when the group has no gross volume.
func (s Summary) CommissionPct() decimal.Decimal {
	if s.TotalGross.IsZero() {
		return decimal.Zero
	}
	return s.TotalCommission.Div(s.TotalGross).Mul(decimal.NewFromInt(100)).Round(2)
}
