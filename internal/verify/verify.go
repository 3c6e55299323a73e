// Package verify checks each transaction's actual commission against
// the agreed rate table. Refunds are never verified: the bank reverses
// whatever it originally charged, so the agreed sale rate does not
// apply to them.
package verify

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/posrecon-dev/posrecon/internal/model"
	"github.com/posrecon-dev/posrecon/internal/rates"
)

// DefaultEpsilon is the commission tolerance in currency units: one
// kuruş, so rounding differences in the bank's own arithmetic never
// count as mismatches.
const DefaultEpsilon = 0.01

// Verifier compares transactions against a rate table.
type Verifier struct {
	table   *rates.Table
	epsilon decimal.Decimal
}

// New creates a Verifier. An epsilon of 0 or less falls back to
// DefaultEpsilon.
func New(table *rates.Table, epsilon float64) *Verifier {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Verifier{table: table, epsilon: decimal.NewFromFloat(epsilon)}
}

// Verify checks one transaction. The expected commission is gross
// times the agreed rate; the row matches when the actual commission is
// within epsilon of that. A bank/installment pair absent from the
// table is reported as "rate undefined", distinct from a mismatch,
// and refunds pass through unverified.
func (v *Verifier) Verify(txn model.Transaction) model.VerifiedTransaction {
	out := model.VerifiedTransaction{Transaction: txn}

	if txn.IsRefund() {
		out.RateMatch = true
		out.Reason = model.ReasonRefundBypass
		return out
	}

	expected, err := v.table.Lookup(txn.Bank, txn.Installments)
	if err != nil {
		if !errors.Is(err, rates.ErrRateNotFound) {
			// Lookup only fails with ErrRateNotFound today; anything
			// else still must not pass silently.
			out.Reason = err.Error()
			return out
		}
		out.Reason = model.ReasonRateUndefined
		return out
	}

	out.RateExpected = expected
	out.CommissionExpected = txn.Gross.Mul(expected).Round(2)
	out.CommissionDiff = txn.Commission.Sub(out.CommissionExpected)

	if out.CommissionDiff.Abs().LessThanOrEqual(v.epsilon) {
		out.RateMatch = true
	} else {
		out.Reason = model.ReasonMismatch
	}
	return out
}

// VerifyAll checks a batch, preserving order.
func (v *Verifier) VerifyAll(txns []model.Transaction) []model.VerifiedTransaction {
	out := make([]model.VerifiedTransaction, len(txns))
	for i, txn := range txns {
		out[i] = v.Verify(txn)
	}
	return out
}
