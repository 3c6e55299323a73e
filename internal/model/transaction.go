package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a settlement row as a sale or a refund.
type Category string

const (
	CategorySale   Category = "sale"
	CategoryRefund Category = "refund"
)

// RateSource records where the actual commission rate came from.
type RateSource string

const (
	// RateFromFile means the bank export carried a rate column.
	RateFromFile RateSource = "file"
	// RateDerived means the rate was computed as commission/gross
	// because the export has no usable rate column.
	RateDerived RateSource = "derived"
)

// Transaction is a canonical POS settlement row. Adapters create one
// per source row; after classification it is never mutated.
type Transaction struct {
	Bank           string // canonical bank key, e.g. "vakifbank"
	BankName       string // statement display name
	Date           time.Time
	SettlementDate time.Time
	Gross          decimal.Decimal
	Rate           decimal.Decimal // actual rate, fractional (0.0336 = 3.36%)
	RateSource     RateSource
	Commission     decimal.Decimal
	Net            decimal.Decimal // always Gross - Commission, never read from source
	Installments   int             // 1 = single immediate payment
	InstallmentNo  int
	Category       Category
	CardType       string
	Blocked        decimal.Decimal
	SourceFile     string
	SourceRow      int // 1-based row number in the source file
}

// IsRefund reports whether the row was classified as a refund.
func (t Transaction) IsRefund() bool { return t.Category == CategoryRefund }
