package model

import "github.com/shopspring/decimal"

// Verification reasons. Empty means the expected rate matched.
const (
	ReasonMismatch      = "rate mismatch"
	ReasonRateUndefined = "rate undefined"
	ReasonRefundBypass  = "refund"
)

// VerifiedTransaction is a Transaction plus the outcome of checking the
// bank's applied rate against the expected rate table. It is derived
// state: regenerated whenever the rate table version changes.
type VerifiedTransaction struct {
	Transaction

	RateExpected       decimal.Decimal
	CommissionExpected decimal.Decimal
	CommissionDiff     decimal.Decimal // actual - expected
	RateMatch          bool
	Reason             string
}
