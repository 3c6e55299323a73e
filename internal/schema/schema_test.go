package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posrecon-dev/posrecon/internal/config"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "islem tarihi", Fold("İşlem Tarihi"))
	assert.Equal(t, "islem tarihi", Fold("ISLEM_TARIHI"))
	assert.Equal(t, "islem tarihi", Fold("\uFEFF İşlem Tarihi "))
	assert.Equal(t, "komisyon orani", Fold("Komisyon Oranı"))
	assert.Equal(t, "cozulmus alacak tutari", Fold("Çözülmüş Alacak Tutarı"))
	assert.Equal(t, "", Fold("  "))
}

func TestResolveVariant_FirstMatchWins(t *testing.T) {
	variants := []config.Variant{
		{Name: "current", Required: []string{"Yükleme Tarihi"}, Columns: map[string]string{"Yükleme Tarihi": FieldTransactionDate}},
		{Name: "legacy", Required: []string{"İşlem Tarihi"}, Columns: map[string]string{"İşlem Tarihi": FieldTransactionDate}},
	}

	v, err := ResolveVariant([]string{"Yükleme Tarihi", "İşlem Tutarı"}, variants)
	require.NoError(t, err)
	assert.Equal(t, "current", v.Name)

	v, err = ResolveVariant([]string{"İşlem Tarihi", "Brüt Tutar"}, variants)
	require.NoError(t, err)
	assert.Equal(t, "legacy", v.Name)
}

func TestResolveVariant_NoMatch(t *testing.T) {
	variants := []config.Variant{
		{Name: "standard", Required: []string{"İşlem Tarihi"}, Columns: map[string]string{"İşlem Tarihi": FieldTransactionDate}},
	}
	_, err := ResolveVariant([]string{"Completely", "Different"}, variants)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestRowMapper_Map(t *testing.T) {
	v := config.Variant{Columns: map[string]string{
		"İşlem Tarihi":    FieldTransactionDate,
		"İşlem Tutarı":    FieldGrossAmount,
		"Komisyon Tutarı": FieldCommissionAmount,
	}}
	header := []string{"İşlem Tarihi", "İşlem Tutarı", "Komisyon Tutarı", "Açıklama"}
	m := NewRowMapper(header, v)

	row := m.Map([]string{"01.12.2025", " 5038,80 ", "169,30", "unmapped"})
	assert.Equal(t, "01.12.2025", row[FieldTransactionDate])
	assert.Equal(t, "5038,80", row[FieldGrossAmount])
	assert.Equal(t, "169,30", row[FieldCommissionAmount])
	_, ok := row["Açıklama"]
	assert.False(t, ok)
}

func TestRowMapper_ShortRecord(t *testing.T) {
	v := config.Variant{Columns: map[string]string{
		"A": FieldGrossAmount,
		"B": FieldCommissionAmount,
	}}
	m := NewRowMapper([]string{"A", "B"}, v)

	row := m.Map([]string{"100"})
	assert.Equal(t, "100", row[FieldGrossAmount])
	_, ok := row[FieldCommissionAmount]
	assert.False(t, ok)
}

func TestRowMapper_Has(t *testing.T) {
	v := config.Variant{Columns: map[string]string{"A": FieldGrossAmount}}
	m := NewRowMapper([]string{"A"}, v)
	assert.True(t, m.Has(FieldGrossAmount))
	assert.False(t, m.Has(FieldCommissionRate))
}
