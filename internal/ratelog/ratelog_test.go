package ratelog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() Entry {
	return Entry{
		ID:           "2f0c7f9e-4f3a-4a7d-9b0e-000000000001",
		Timestamp:    time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC),
		Actor:        "ops",
		Action:       ActionSet,
		Bank:         "vakifbank",
		Installments: 3,
		OldRate:      decimal.RequireFromString("0.0690"),
		NewRate:      decimal.RequireFromString("0.0715"),
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	e := sampleEntry()
	got, err := UnmarshalEntry(MarshalEntry(e))
	require.NoError(t, err)

	assert.Equal(t, e.ID, got.ID)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, e.Bank, got.Bank)
	assert.Equal(t, e.Installments, got.Installments)
	assert.True(t, e.OldRate.Equal(got.OldRate))
	assert.True(t, e.NewRate.Equal(got.NewRate))
}

func TestUnmarshalBadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"only", "three", "fields"})
	assert.Error(t, err)
}

func TestAppendAndRead(t *testing.T) {
	dir := t.TempDir()

	first := sampleEntry()
	require.NoError(t, Append(dir, []Entry{first}))

	second := sampleEntry()
	second.ID = "2f0c7f9e-4f3a-4a7d-9b0e-000000000002"
	second.Action = ActionImport
	second.Bank = "ziraat"
	require.NoError(t, Append(dir, []Entry{second}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "vakifbank", entries[0].Bank)
	assert.Equal(t, ActionImport, entries[1].Action)
}

func TestReadMissingFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
