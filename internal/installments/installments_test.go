package installments

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateEvenSplit(t *testing.T) {
	schedule, err := Generate(decimal.NewFromInt(1200), 3, "03-2024", 15)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, "1 of 3", schedule[0].LabelSuffix)
	assert.Equal(t, "2 of 3", schedule[1].LabelSuffix)
	assert.Equal(t, "3 of 3", schedule[2].LabelSuffix)

	for _, inst := range schedule {
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(400)),
			"expected 400, got %s", inst.Amount)
	}

	assert.Equal(t, date(2024, time.March, 15), schedule[0].DueDate)
	assert.Equal(t, date(2024, time.April, 15), schedule[1].DueDate)
	assert.Equal(t, date(2024, time.May, 15), schedule[2].DueDate)
}

func TestGenerateTruncatesAmount(t *testing.T) {
	// 100 / 3 = 33.333... -> 33.33, remainder not redistributed.
	schedule, err := Generate(decimal.NewFromInt(100), 3, "01-2024", 1)
	require.NoError(t, err)

	want := decimal.RequireFromString("33.33")
	for _, inst := range schedule {
		assert.True(t, inst.Amount.Equal(want), "expected 33.33, got %s", inst.Amount)
	}
}

func TestGenerateClampsAnchorDay(t *testing.T) {
	// Anchor 31 across Jan..Apr: 31, 29 (leap Feb), 31, 30.
	schedule, err := Generate(decimal.NewFromInt(400), 4, "01-2024", 31)
	require.NoError(t, err)
	require.Len(t, schedule, 4)

	assert.Equal(t, date(2024, time.January, 31), schedule[0].DueDate)
	assert.Equal(t, date(2024, time.February, 29), schedule[1].DueDate)
	assert.Equal(t, date(2024, time.March, 31), schedule[2].DueDate)
	assert.Equal(t, date(2024, time.April, 30), schedule[3].DueDate)
}

func TestGenerateNonLeapFebruary(t *testing.T) {
	schedule, err := Generate(decimal.NewFromInt(100), 1, "02-2023", 30)
	require.NoError(t, err)
	assert.Equal(t, date(2023, time.February, 28), schedule[0].DueDate)
}

func TestGenerateYearRollover(t *testing.T) {
	schedule, err := Generate(decimal.NewFromInt(300), 3, "11-2024", 10)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.November, 10), schedule[0].DueDate)
	assert.Equal(t, date(2024, time.December, 10), schedule[1].DueDate)
	assert.Equal(t, date(2025, time.January, 10), schedule[2].DueDate)
}

func TestGenerateAnchorBelowOne(t *testing.T) {
	schedule, err := Generate(decimal.NewFromInt(100), 2, "05-2024", 0)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.May, 1), schedule[0].DueDate)
	assert.Equal(t, date(2024, time.June, 1), schedule[1].DueDate)
}

func TestGenerateInvalidCount(t *testing.T) {
	for _, count := range []int{0, -1} {
		_, err := Generate(decimal.NewFromInt(100), count, "01-2024", 1)
		assert.ErrorIs(t, err, ErrInvalidCount)
	}
}

func TestGenerateInvalidFirstDue(t *testing.T) {
	for _, firstDue := range []string{"", "2024-01", "13-2024", "january"} {
		_, err := Generate(decimal.NewFromInt(100), 1, firstDue, 1)
		assert.ErrorIs(t, err, ErrInvalidFirstDue, "firstDue=%q", firstDue)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(decimal.NewFromInt(999), 5, "06-2024", 20)
	require.NoError(t, err)
	b, err := Generate(decimal.NewFromInt(999), 5, "06-2024", 20)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
