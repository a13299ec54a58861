package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardCardsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com", "s3cret")
	categoryID := env.seedCategory(t, token, "Groceries")

	curFirst, curLast := monthBounds(time.Now())
	prevFirst, _ := monthBounds(curFirst.AddDate(0, -1, 0))

	// One unpaid expense last month (overdue + previous month), one due at
	// the end of this month (pending + current month).
	for _, due := range []time.Time{
		prevFirst.AddDate(0, 0, 5),
		startOfDay(curLast),
	} {
		rec := env.do(t, http.MethodPost, "/expenses", token, map[string]interface{}{
			"category_id": categoryID, "label": "Bill", "amount": "50.00",
			"due_date": due.Format("2006-01-02"),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, "/dashboard/cards", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cards dashboardCardsResponse
	decodeJSON(t, rec, &cards)
	assert.Equal(t, 1, cards.Overdue)
	assert.Equal(t, 1, cards.Pending)
	assert.Equal(t, 1, cards.CurrentMonth)
	assert.Equal(t, 1, cards.PreviousMonth)
}

func TestDashboardLineYearEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com", "s3cret")
	categoryID := env.seedCategory(t, token, "Groceries")

	now := time.Now().UTC()
	rec := env.do(t, http.MethodPost, "/expenses", token, map[string]interface{}{
		"category_id": categoryID, "label": "Bill", "amount": "75.50",
		"due_date": now.Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/dashboard/line_year", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dashboardLineYearResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.MonthlyTotals, 12)

	monthTotal := resp.MonthlyTotals[int(now.Month())-1]
	assert.True(t, monthTotal.Equal(decimal.RequireFromString("75.50")), "got %s", monthTotal)
	assert.Equal(t, 1, resp.YearCount)

	// The other months are zero.
	var nonZero int
	for _, total := range resp.MonthlyTotals {
		if !total.IsZero() {
			nonZero++
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestDashboardPieEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com", "s3cret")
	groceries := env.seedCategory(t, token, "Groceries")
	transport := env.seedCategory(t, token, "Transport")

	curFirst, _ := monthBounds(time.Now())
	prevFirst, _ := monthBounds(curFirst.AddDate(0, -1, 0))

	// Previous month: groceries. Current month: transport.
	for _, tc := range []struct {
		categoryID int64
		due        time.Time
	}{
		{groceries, prevFirst.AddDate(0, 0, 5)},
		{transport, curFirst.AddDate(0, 0, 5)},
	} {
		rec := env.do(t, http.MethodPost, "/expenses", token, map[string]interface{}{
			"category_id": tc.categoryID, "label": "Bill", "amount": "30.00",
			"due_date": tc.due.Format("2006-01-02"),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/dashboard/pie_month", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Groceries")
	assert.NotContains(t, rec.Body.String(), "Transport")

	rec = env.do(t, http.MethodGet, "/dashboard/pie_year", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// The current-month expense always falls in the current year.
	assert.Contains(t, rec.Body.String(), "Transport")
}

func TestDashboardEmptyState(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Alice", "alice@example.com", "s3cret")

	rec := env.do(t, http.MethodGet, "/dashboard/cards", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cards dashboardCardsResponse
	decodeJSON(t, rec, &cards)
	assert.Zero(t, cards.Overdue)
	assert.Zero(t, cards.Pending)

	rec = env.do(t, http.MethodGet, "/dashboard/pie_month", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totals":[]}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/dashboard/line_year", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardLineYearResponse
	decodeJSON(t, rec, &resp)
	for _, total := range resp.MonthlyTotals {
		assert.True(t, total.IsZero())
	}
}
