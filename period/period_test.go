package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekoparty/utgifter/period"
)

// =============================================================================
// KEY PARSING TESTS
// =============================================================================

func TestParse_ValidKey(t *testing.T) {
	k, err := period.Parse("2025-03")
	require.NoError(t, err)
	assert.Equal(t, period.Key("2025-03"), k)
	assert.Equal(t, 2025, k.Year())
	assert.Equal(t, time.March, k.Month())
}

func TestParse_RejectsNonCanonical(t *testing.T) {
	// Only the canonical YYYY-MM form round-trips; anything else is invalid.
	cases := []string{
		"",
		"2025",
		"2025-3",
		"2025-13",
		"2025-00",
		"2025/03",
		"25-03",
		"2025-03-01",
		"not-a-key",
	}
	for _, raw := range cases {
		_, err := period.Parse(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestFromTime_UsesUTC(t *testing.T) {
	// A local timestamp late on the last day of the month must not slip
	// into the next month when normalized.
	loc := time.FixedZone("UTC+14", 14*60*60)
	ts := time.Date(2025, time.April, 1, 1, 0, 0, 0, loc) // 2025-03-31T11:00Z
	assert.Equal(t, period.Key("2025-03"), period.FromTime(ts))
}

// =============================================================================
// ORDERING AND ARITHMETIC TESTS
// =============================================================================

func TestKey_LexicographicOrderIsChronological(t *testing.T) {
	a := period.MustParse("2024-12")
	b := period.MustParse("2025-01")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
}

func TestAddMonths_CrossesYearBoundary(t *testing.T) {
	k := period.MustParse("2024-11")
	assert.Equal(t, period.Key("2025-02"), k.AddMonths(3))
	assert.Equal(t, period.Key("2024-08"), k.AddMonths(-3))
	assert.Equal(t, period.Key("2024-12"), k.Next())
	assert.Equal(t, period.Key("2024-10"), k.Prev())
}

func TestMonthsBetween(t *testing.T) {
	a := period.MustParse("2024-11")
	b := period.MustParse("2025-02")
	assert.Equal(t, 3, a.MonthsBetween(b))
	assert.Equal(t, -3, b.MonthsBetween(a))
	assert.Equal(t, 0, a.MonthsBetween(a))
}

// =============================================================================
// DUE DATE TESTS
// =============================================================================

func TestClampDueDay(t *testing.T) {
	assert.Equal(t, 1, period.ClampDueDay(0))
	assert.Equal(t, 1, period.ClampDueDay(-5))
	assert.Equal(t, 15, period.ClampDueDay(15))
	assert.Equal(t, 28, period.ClampDueDay(28))
	// 29-31 clamp to 28 so February always has a real due date
	assert.Equal(t, 28, period.ClampDueDay(31))
}

func TestDueDate_FebruaryNeverOverflows(t *testing.T) {
	k := period.MustParse("2025-02")
	due := k.DueDate(31)
	assert.Equal(t, time.February, due.Month())
	assert.Equal(t, 28, due.Day())
}

// =============================================================================
// WINDOW TESTS
// =============================================================================

func TestAround_BuildsInclusiveWindow(t *testing.T) {
	center := period.MustParse("2025-06")
	w := period.Around(center, 2, 3)

	assert.Equal(t, period.Key("2025-04"), w.From)
	assert.Equal(t, period.Key("2025-09"), w.To)
	assert.Equal(t, 6, w.Months())

	keys := w.Keys()
	require.Len(t, keys, 6)
	assert.Equal(t, period.Key("2025-04"), keys[0])
	assert.Equal(t, period.Key("2025-09"), keys[5])
}

func TestWindow_Contains(t *testing.T) {
	w := period.NewWindow(period.MustParse("2025-01"), period.MustParse("2025-03"))
	assert.True(t, w.Contains(period.MustParse("2025-01")))
	assert.True(t, w.Contains(period.MustParse("2025-03")))
	assert.False(t, w.Contains(period.MustParse("2024-12")))
	assert.False(t, w.Contains(period.MustParse("2025-04")))
}

func TestAround_ZeroPastStartsAtCenter(t *testing.T) {
	center := period.MustParse("2025-06")
	w := period.Around(center, 0, 0)
	assert.Equal(t, center, w.From)
	assert.Equal(t, center, w.To)
	assert.Equal(t, []period.Key{center}, w.Keys())
}
