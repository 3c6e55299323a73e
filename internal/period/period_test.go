package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonth(t *testing.T) {
	d := time.Date(2025, 12, 14, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-12", Month(d))
}

func TestMonth_ZeroDate(t *testing.T) {
	assert.Equal(t, "", Month(time.Time{}))
}

func TestParse(t *testing.T) {
	got, err := Parse("2025-12")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.December, got.Month())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("12/2025")
	assert.Error(t, err)
}
