package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Formats(t *testing.T) {
	want := time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2023-07-15",
		"15/07/2023",
		"15/7/2023",
		"15-07-2023",
		"2023/07/15",
	} {
		got := ParseDate(in)
		require.NotNil(t, got, "input %q", in)
		assert.True(t, got.Equal(want), "input %q parsed as %v", in, got)
	}
}

func TestParseDate_DayMonthOrder(t *testing.T) {
	// Locale form is day/month/year: 03/04 is April 3rd, not March 4th.
	got := ParseDate("03/04/2024")
	require.NotNil(t, got)
	assert.Equal(t, time.April, got.Month())
	assert.Equal(t, 3, got.Day())
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "not a date", "31/02/2023", "2023-13-01"} {
		assert.Nil(t, ParseDate(in), "input %q", in)
	}
}

func TestDateInRange(t *testing.T) {
	d := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, DateInRange(d, "2023-01-01", "2023-12-31"))
	assert.True(t, DateInRange(d, "01/06/2023", "01/06/2023"), "bounds are inclusive")
	assert.False(t, DateInRange(d, "2023-06-02", "2023-12-31"))
	assert.False(t, DateInRange(d, "2023-01-01", "2023-05-31"))
	assert.False(t, DateInRange(d, "garbage", "2023-12-31"), "unparseable bound never matches")
	assert.False(t, DateInRange(d, "2023-01-01", ""))
}
