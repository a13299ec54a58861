package api

import (
	"net/http"
	"time"

	"github.com/billfold-io/billfold/internal/auth"
	"github.com/billfold-io/billfold/internal/models"
	"github.com/shopspring/decimal"
)

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthBounds returns the first and last instant of the month holding t.
func monthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.UTC().Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return first, last
}

type dashboardCardsResponse struct {
	Overdue       int `json:"overdue"`
	Pending       int `json:"pending"`
	CurrentMonth  int `json:"current_month"`
	PreviousMonth int `json:"previous_month"`
}

func (api *Api) DashboardCardsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}
	ctx := r.Context()
	today := startOfDay(time.Now())

	overdue, err := api.store.CountOverdue(ctx, claims.UserID, today)
	if err != nil {
		writeError(w, err)
		return
	}
	pending, err := api.store.CountPending(ctx, claims.UserID, today)
	if err != nil {
		writeError(w, err)
		return
	}

	curFirst, curLast := monthBounds(today)
	current, err := api.store.CountDueBetween(ctx, claims.UserID, curFirst, curLast)
	if err != nil {
		writeError(w, err)
		return
	}

	prevFirst, prevLast := monthBounds(curFirst.AddDate(0, -1, 0))
	previous, err := api.store.CountDueBetween(ctx, claims.UserID, prevFirst, prevLast)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardCardsResponse{
		Overdue:       overdue,
		Pending:       pending,
		CurrentMonth:  current,
		PreviousMonth: previous,
	})
}

type dashboardLineYearResponse struct {
	MonthlyTotals []decimal.Decimal `json:"monthly_totals"`
	YearCount     int               `json:"year_count"`
	SpendingLimit decimal.Decimal   `json:"spending_limit"`
}

func (api *Api) DashboardLineYearHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}
	ctx := r.Context()
	year := time.Now().UTC().Year()

	totals := make([]decimal.Decimal, 0, 12)
	for month := time.January; month <= time.December; month++ {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)

		total, err := api.store.SumDueBetween(ctx, claims.UserID, first, last)
		if err != nil {
			writeError(w, err)
			return
		}
		totals = append(totals, total)
	}

	yearFirst := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearLast := yearFirst.AddDate(1, 0, 0).Add(-time.Nanosecond)
	yearCount, err := api.store.CountDueBetween(ctx, claims.UserID, yearFirst, yearLast)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := api.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardLineYearResponse{
		MonthlyTotals: totals,
		YearCount:     yearCount,
		SpendingLimit: user.SpendingLimit,
	})
}

func (api *Api) DashboardPieMonthHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	curFirst, _ := monthBounds(time.Now())
	prevFirst, prevLast := monthBounds(curFirst.AddDate(0, -1, 0))

	sums, err := api.store.CategoryTotals(r.Context(), claims.UserID, prevFirst, prevLast)
	if err != nil {
		writeError(w, err)
		return
	}
	if sums == nil {
		sums = []models.CategorySum{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"totals": sums})
}

func (api *Api) DashboardPieYearHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	year := time.Now().UTC().Year()
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(1, 0, 0).Add(-time.Nanosecond)

	sums, err := api.store.CategoryTotals(r.Context(), claims.UserID, first, last)
	if err != nil {
		writeError(w, err)
		return
	}
	if sums == nil {
		sums = []models.CategorySum{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"totals": sums})
}
