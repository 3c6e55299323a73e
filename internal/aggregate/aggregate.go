// Package aggregate folds verified transactions into per-group
// summaries for reporting: by bank, by settlement period, by
// installment plan, or any combination.
package aggregate

import (
	"sort"

	"github.com/posrecon-dev/posrecon/internal/model"
	"github.com/posrecon-dev/posrecon/internal/period"
)

// GroupBy selects the grouping dimensions of a summary run.
type GroupBy struct {
	Bank         bool
	Period       bool
	Installments bool
}

// ByBank groups by bank only.
var ByBank = GroupBy{Bank: true}

// ByBankPeriod groups by bank and settlement month.
var ByBankPeriod = GroupBy{Bank: true, Period: true}

// ByBankInstallments groups by bank and installment plan.
var ByBankInstallments = GroupBy{Bank: true, Installments: true}

// FilterSuccessful returns only the sale transactions. Refunds and
// anything else that is not a completed sale stay out of revenue
// summaries.
func FilterSuccessful(txns []model.VerifiedTransaction) []model.VerifiedTransaction {
	var out []model.VerifiedTransaction
	for _, txn := range txns {
		if txn.Category == model.CategorySale {
			out = append(out, txn)
		}
	}
	return out
}

type groupKey struct {
	bank         string
	period       string
	installments int
}

// Aggregate folds transactions into one Summary per group. Groups
// nobody hit are simply absent, never emitted with zero counts, and
// the result is sorted by bank, period, then installments, so the
// same input always yields the same output.
func Aggregate(txns []model.VerifiedTransaction, by GroupBy) []model.Summary {
	groups := make(map[groupKey]*model.Summary)

	for _, txn := range txns {
		key := groupKey{}
		if by.Bank {
			key.bank = txn.Bank
		}
		if by.Period {
			key.period = period.Month(txn.Date)
		}
		if by.Installments {
			key.installments = txn.Installments
		}

		s, ok := groups[key]
		if !ok {
			s = &model.Summary{
				Bank:         key.bank,
				Period:       key.period,
				Installments: key.installments,
			}
			groups[key] = s
		}

		s.TotalGross = s.TotalGross.Add(txn.Gross)
		s.TotalCommission = s.TotalCommission.Add(txn.Commission)
		s.TotalExpected = s.TotalExpected.Add(txn.CommissionExpected)
		s.TotalDiff = s.TotalDiff.Add(txn.CommissionDiff)
		s.TotalNet = s.TotalNet.Add(txn.Net)
		s.TransactionCount++
		if !txn.RateMatch {
			s.MismatchedCount++
		}
	}

	out := make([]model.Summary, 0, len(groups))
	for _, s := range groups {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bank != out[j].Bank {
			return out[i].Bank < out[j].Bank
		}
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Installments < out[j].Installments
	})
	return out
}
