package numparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_FixedWidth(t *testing.T) {
	d, err := Amount("+00000000000005038.80")
	require.NoError(t, err)
	assert.Equal(t, "5038.80", d.StringFixed(2))
}

func TestAmount_FixedWidthNegative(t *testing.T) {
	d, err := Amount("-00000000000000169.30")
	require.NoError(t, err)
	assert.Equal(t, "-169.30", d.StringFixed(2))
}

func TestAmount_AllZeros(t *testing.T) {
	d, err := Amount("+00000000000000000.00")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestAmount_TurkishFormat(t *testing.T) {
	d, err := Amount("1.234.567,89")
	require.NoError(t, err)
	assert.Equal(t, "1234567.89", d.StringFixed(2))
}

func TestAmount_EnglishFormat(t *testing.T) {
	d, err := Amount("1,234,567.89")
	require.NoError(t, err)
	assert.Equal(t, "1234567.89", d.StringFixed(2))
}

func TestAmount_CommaDecimal(t *testing.T) {
	d, err := Amount("5038,80")
	require.NoError(t, err)
	assert.Equal(t, "5038.80", d.StringFixed(2))
}

func TestAmount_DotThousandsOnly(t *testing.T) {
	d, err := Amount("4.000")
	require.NoError(t, err)
	assert.Equal(t, "4000.00", d.StringFixed(2))

	d, err = Amount("1.234.567")
	require.NoError(t, err)
	assert.Equal(t, "1234567.00", d.StringFixed(2))
}

func TestAmount_DotDecimalKept(t *testing.T) {
	d, err := Amount("4.50")
	require.NoError(t, err)
	assert.Equal(t, "4.50", d.StringFixed(2))
}

func TestAmount_CurrencyMarkers(t *testing.T) {
	d, err := Amount("5.038,80 TL")
	require.NoError(t, err)
	assert.Equal(t, "5038.80", d.StringFixed(2))

	d, err = Amount("₺169,30")
	require.NoError(t, err)
	assert.Equal(t, "169.30", d.StringFixed(2))
}

func TestAmount_Empty(t *testing.T) {
	d, err := Amount("   ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestAmount_Garbage(t *testing.T) {
	_, err := Amount("N/A")
	assert.Error(t, err)
}

func TestRate_PercentForm(t *testing.T) {
	d, err := Rate("2,95", true)
	require.NoError(t, err)
	assert.Equal(t, "0.0295", d.String())
}

func TestRate_AutoDetectPercent(t *testing.T) {
	d, err := Rate("23.95", false)
	require.NoError(t, err)
	assert.Equal(t, "0.2395", d.String())
}

func TestRate_FractionKept(t *testing.T) {
	d, err := Rate("0.0336", false)
	require.NoError(t, err)
	assert.Equal(t, "0.0336", d.String())
}

func TestInstallments_Plain(t *testing.T) {
	count, index, err := Installments("6")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	assert.Equal(t, 1, index)
}

func TestInstallments_SlashForm(t *testing.T) {
	count, index, err := Installments("3/2")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, index)
}

func TestInstallments_ZeroMeansSingle(t *testing.T) {
	count, _, err := Installments("0")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInstallments_EmptyMeansSingle(t *testing.T) {
	count, index, err := Installments("")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, index)
}

func TestInstallments_Garbage(t *testing.T) {
	_, _, err := Installments("çok")
	assert.Error(t, err)
}
