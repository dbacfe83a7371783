package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/extract"
)

func TestParseDate_EquivalentForms(t *testing.T) {
	for _, in := range []string{"07-Feb-2025", "07/02/2025", "2025-02-07", "7-Feb-25"} {
		got, err := extract.ParseDate(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, "2025-02-07", got.Format("2006-01-02"), "input %q", in)
	}
}

func TestParseDate_MonthFirstOnlyWhenDayFirstImpossible(t *testing.T) {
	// Day-first reading wins for ambiguous dates.
	got, err := extract.ParseDate("03/02/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", got.Format("2006-01-02"))

	// 13 cannot be a month, so the month-first layout catches it.
	got, err = extract.ParseDate("02/13/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-13", got.Format("2006-01-02"))
}

func TestParseDate_InvalidRejectedNotClamped(t *testing.T) {
	for _, in := range []string{"31-02-2025", "2025-02-30", "00/00/2025", "32/01/2025"} {
		_, err := extract.ParseDate(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseDate_Unsupported(t *testing.T) {
	_, err := extract.ParseDate("February the 7th")
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-02-07", extract.NormalizeDate("07-Feb-2025"))
	assert.Equal(t, "not a date", extract.NormalizeDate("not a date"))
}
