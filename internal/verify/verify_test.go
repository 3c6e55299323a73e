package verify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posrecon-dev/posrecon/internal/model"
	"github.com/posrecon-dev/posrecon/internal/rates"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTable() *rates.Table {
	t := rates.NewTable()
	t.Set("vakifbank", 1, dec("0.0336"))
	t.Set("vakifbank", 3, dec("0.0690"))
	return t
}

func saleTxn(gross, commission string, installments int) model.Transaction {
	return model.Transaction{
		Bank:         "vakifbank",
		Gross:        dec(gross),
		Commission:   dec(commission),
		Installments: installments,
		Category:     model.CategorySale,
	}
}

func TestVerifyMatch(t *testing.T) {
	v := New(testTable(), 0)

	// 5038.80 * 0.0336 = 169.30368, rounded to 169.30; the bank
	// charged 169.30, inside the one-kuruş tolerance.
	got := v.Verify(saleTxn("5038.80", "169.30", 1))

	assert.True(t, got.RateMatch)
	assert.Empty(t, got.Reason)
	assert.Equal(t, "0.0336", got.RateExpected.String())
	assert.Equal(t, "169.3", got.CommissionExpected.String())
	assert.True(t, got.CommissionDiff.IsZero())
}

func TestVerifyMatchWithinEpsilon(t *testing.T) {
	v := New(testTable(), 0)

	got := v.Verify(saleTxn("5038.80", "169.31", 1))
	assert.True(t, got.RateMatch)
	assert.Equal(t, "0.01", got.CommissionDiff.String())
}

func TestVerifyMismatch(t *testing.T) {
	v := New(testTable(), 0)

	got := v.Verify(saleTxn("5038.80", "175.00", 1))

	assert.False(t, got.RateMatch)
	assert.Equal(t, model.ReasonMismatch, got.Reason)
	assert.Equal(t, "5.7", got.CommissionDiff.String())
}

func TestVerifyCustomEpsilon(t *testing.T) {
	v := New(testTable(), 10.0)

	got := v.Verify(saleTxn("5038.80", "175.00", 1))
	assert.True(t, got.RateMatch, "a 5.70 difference is inside a 10.00 tolerance")
}

func TestVerifyRateUndefined(t *testing.T) {
	v := New(testTable(), 0)

	// No rate for 12 installments.
	got := v.Verify(saleTxn("1000.00", "50.00", 12))
	require.False(t, got.RateMatch)
	assert.Equal(t, model.ReasonRateUndefined, got.Reason)
	assert.True(t, got.RateExpected.IsZero())
	assert.True(t, got.CommissionExpected.IsZero())

	// Unknown bank.
	txn := saleTxn("1000.00", "50.00", 1)
	txn.Bank = "unknown"
	got = v.Verify(txn)
	assert.Equal(t, model.ReasonRateUndefined, got.Reason)
}

func TestVerifyRefundBypass(t *testing.T) {
	v := New(testTable(), 0)

	txn := saleTxn("-250.00", "-8.40", 1)
	txn.Category = model.CategoryRefund
	got := v.Verify(txn)

	assert.True(t, got.RateMatch)
	assert.Equal(t, model.ReasonRefundBypass, got.Reason)
	assert.True(t, got.RateExpected.IsZero())
	assert.True(t, got.CommissionExpected.IsZero())
	assert.True(t, got.CommissionDiff.IsZero())
}

func TestVerifyAllPreservesOrder(t *testing.T) {
	v := New(testTable(), 0)

	txns := []model.Transaction{
		saleTxn("100.00", "3.36", 1),
		saleTxn("200.00", "99.00", 1),
		saleTxn("300.00", "20.70", 3),
	}
	got := v.VerifyAll(txns)

	require.Len(t, got, 3)
	assert.True(t, got[0].RateMatch)
	assert.False(t, got[1].RateMatch)
	assert.True(t, got[2].RateMatch)
}
