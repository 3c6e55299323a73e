package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posrecon-dev/posrecon/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func verified(bank string, date time.Time, installments int, gross, commission string, match bool) model.VerifiedTransaction {
	g, c := dec(gross), dec(commission)
	return model.VerifiedTransaction{
		Transaction: model.Transaction{
			Bank:         bank,
			Date:         date,
			Installments: installments,
			Gross:        g,
			Commission:   c,
			Net:          g.Sub(c),
			Category:     model.CategorySale,
		},
		RateMatch: match,
	}
}

var (
	july   = time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	august = time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
)

func TestAggregateByBank(t *testing.T) {
	txns := []model.VerifiedTransaction{
		verified("vakifbank", july, 1, "1000.00", "33.60", true),
		verified("vakifbank", august, 3, "500.00", "34.50", false),
		verified("ziraat", july, 1, "200.00", "5.90", true),
	}

	got := Aggregate(txns, ByBank)
	require.Len(t, got, 2)

	vakif := got[0]
	assert.Equal(t, "vakifbank", vakif.Bank)
	assert.Equal(t, "1500", vakif.TotalGross.String())
	assert.Equal(t, "68.1", vakif.TotalCommission.String())
	assert.Equal(t, "1431.9", vakif.TotalNet.String())
	assert.Equal(t, 2, vakif.TransactionCount)
	assert.Equal(t, 1, vakif.MismatchedCount)

	assert.Equal(t, "ziraat", got[1].Bank)
	assert.Equal(t, 1, got[1].TransactionCount)
}

func TestAggregateByBankPeriod(t *testing.T) {
	txns := []model.VerifiedTransaction{
		verified("vakifbank", july, 1, "1000.00", "33.60", true),
		verified("vakifbank", august, 1, "500.00", "16.80", true),
	}

	got := Aggregate(txns, ByBankPeriod)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-07", got[0].Period)
	assert.Equal(t, "2025-08", got[1].Period)
	assert.Equal(t, "1000", got[0].TotalGross.String())
}

func TestAggregateByBankInstallments(t *testing.T) {
	txns := []model.VerifiedTransaction{
		verified("vakifbank", july, 1, "100.00", "3.36", true),
		verified("vakifbank", july, 3, "300.00", "20.70", true),
		verified("vakifbank", august, 3, "600.00", "41.40", true),
	}

	got := Aggregate(txns, ByBankInstallments)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Installments)
	assert.Equal(t, 3, got[1].Installments)
	assert.Equal(t, "900", got[1].TotalGross.String())
	assert.Equal(t, 2, got[1].TransactionCount)
}

func TestAggregateOmitsEmptyGroups(t *testing.T) {
	// Only one bank present: no zero-count rows for other banks, and
	// an empty input yields an empty result.
	got := Aggregate(nil, ByBankPeriod)
	assert.Empty(t, got)

	got = Aggregate([]model.VerifiedTransaction{
		verified("ziraat", july, 1, "200.00", "5.90", true),
	}, ByBank)
	require.Len(t, got, 1)
	assert.Equal(t, "ziraat", got[0].Bank)
}

func TestAggregateDeterministic(t *testing.T) {
	txns := []model.VerifiedTransaction{
		verified("ziraat", august, 1, "200.00", "5.90", true),
		verified("akbank", july, 2, "300.00", "17.58", true),
		verified("vakifbank", july, 1, "100.00", "3.36", true),
	}

	first := Aggregate(txns, ByBankPeriod)
	for range 10 {
		assert.Equal(t, first, Aggregate(txns, ByBankPeriod))
	}
	assert.Equal(t, "akbank", first[0].Bank)
}

func TestFilterSuccessful(t *testing.T) {
	refund := verified("vakifbank", july, 1, "-250.00", "-8.40", true)
	refund.Category = model.CategoryRefund

	txns := []model.VerifiedTransaction{
		verified("vakifbank", july, 1, "1000.00", "33.60", true),
		refund,
	}

	got := FilterSuccessful(txns)
	require.Len(t, got, 1)
	assert.Equal(t, model.CategorySale, got[0].Category)
}
