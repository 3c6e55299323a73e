package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()

	path := filepath.Join(t.TempDir(), "banks.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, len(cfg.Banks), len(got.Banks))
	vb := got.Banks["vakifbank"]
	assert.Equal(t, "T. VAKIFLAR BANKASI T.A.O.", vb.DisplayName)
	assert.Equal(t, ";", vb.Delimiter)
	assert.Equal(t, "windows-1254", vb.Encoding)
	assert.True(t, vb.RatePercent)
	require.Len(t, vb.Variants, 1)
	assert.Equal(t, "transaction_date", vb.Variants[0].Columns["ISLEM TARIHI"])
	assert.Equal(t, ClassifyMarker, vb.Classify.Mode)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Len(t, cfg.Banks, 8)
	assert.Equal(t, OnRowErrorSkip, cfg.Defaults.OnRowError)
	assert.InDelta(t, 0.01, cfg.Verification.Epsilon, 1e-9)

	// Yapı Kredi carries two historical layouts, newest first.
	ykb := cfg.Banks["ykb"]
	require.Len(t, ykb.Variants, 2)
	assert.Equal(t, "current", ykb.Variants[0].Name)
	assert.Equal(t, "legacy", ykb.Variants[1].Name)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.yaml")
	err := os.WriteFile(path, []byte("banks: {}\n"), 0o644)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", got.Defaults.Encoding)
	assert.Equal(t, ",", got.Defaults.Delimiter)
	assert.Equal(t, OnRowErrorSkip, got.Defaults.OnRowError)
	assert.InDelta(t, 0.01, got.Verification.Epsilon, 1e-9)
}

func TestResolve(t *testing.T) {
	cfg := Default()
	bank := cfg.Resolve(cfg.Banks["ziraat"])
	assert.Equal(t, "utf-8", bank.Encoding)
	assert.Equal(t, ",", bank.Delimiter)
	assert.Equal(t, OnRowErrorSkip, bank.OnRowError)
	assert.NotEmpty(t, bank.DateFormats)
}

func TestVariantRequiredColumns(t *testing.T) {
	v := Variant{Columns: map[string]string{"A": "a", "B": "b"}}
	assert.ElementsMatch(t, []string{"A", "B"}, v.RequiredColumns())

	v.Required = []string{"A"}
	assert.Equal(t, []string{"A"}, v.RequiredColumns())
}
