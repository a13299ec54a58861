package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/billfold-io/billfold/internal/auth"
	"github.com/billfold-io/billfold/internal/database"
	"github.com/billfold-io/billfold/internal/installments"
	"github.com/billfold-io/billfold/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// parseDate accepts plain dates and full timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type expenseRequest struct {
	CategoryID int64           `json:"category_id"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    string          `json:"due_date"`
	PaidAt     *string         `json:"paid_at"`
}

func (req *expenseRequest) toModel(userID int64) (*models.Expense, error) {
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date: %v", err)
	}

	var paidAt *time.Time
	if req.PaidAt != nil && *req.PaidAt != "" {
		paid, err := parseDate(*req.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("invalid paid_at: %v", err)
		}
		paidAt = &paid
	}

	return &models.Expense{
		UserID:     &userID,
		CategoryID: req.CategoryID,
		Label:      req.Label,
		Amount:     req.Amount,
		DueDate:    due,
		PaidAt:     paidAt,
	}, nil
}

func (api *Api) CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Label == "" {
		http.Error(w, "label is required", http.StatusBadRequest)
		return
	}

	expense, err := req.toModel(claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := api.store.CreateExpense(r.Context(), expense); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

type installmentsRequest struct {
	CategoryID   int64           `json:"category_id"`
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
	Count        int             `json:"count"`
	FirstDueDate string          `json:"first_due_month"` // MM-YYYY
	DueDay       int             `json:"due_day"`
}

func (api *Api) CreateInstallmentsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	var req installmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	schedule, err := installments.Generate(req.Amount, req.Count, req.FirstDueDate, req.DueDay)
	if err != nil {
		// Invalid count or month never reaches the store: zero rows persisted.
		if errors.Is(err, installments.ErrInvalidCount) || errors.Is(err, installments.ErrInvalidFirstDue) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, err)
		return
	}

	if err := api.store.CreateInstallments(r.Context(), claims.UserID, req.CategoryID, req.Label, schedule); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"created": len(schedule)})
}

func (api *Api) UpdateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "expenseID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid expense id", http.StatusBadRequest)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	expense, err := req.toModel(claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense.ID = id

	if err := api.store.UpdateExpense(r.Context(), claims.UserID, expense); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}

type paymentRequest struct {
	PaidAt *string `json:"paid_at"`
}

func (api *Api) SetExpensePaymentHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "expenseID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid expense id", http.StatusBadRequest)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Absent or null paid_at reverts the expense to unpaid.
	var paidAt *time.Time
	if req.PaidAt != nil && *req.PaidAt != "" {
		paid, err := parseDate(*req.PaidAt)
		if err != nil {
			http.Error(w, "invalid paid_at", http.StatusBadRequest)
			return
		}
		paidAt = &paid
	}

	if err := api.store.SetExpensePayment(r.Context(), claims.UserID, id, paidAt); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}

func (api *Api) DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "expenseID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid expense id", http.StatusBadRequest)
		return
	}

	if err := api.store.DeleteExpense(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}

func (api *Api) GetExpenseHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "expenseID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid expense id", http.StatusBadRequest)
		return
	}

	expense, err := api.store.GetExpense(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

type listExpensesResponse struct {
	Expenses []*models.Expense `json:"expenses"`
	Total    int               `json:"total"`
}

func (api *Api) ListExpensesHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	filter := database.ExpenseFilter{Search: q.Get("search")}

	filter.Skip, _ = strconv.Atoi(q.Get("skip"))
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	filter.CategoryID, _ = strconv.ParseInt(q.Get("category"), 10, 64)

	if from, to := q.Get("from"), q.Get("to"); from != "" && to != "" {
		fromDate, err := parseDate(from)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
		toDate, err := parseDate(to)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
		// The range is inclusive of the whole end day.
		toDate = toDate.AddDate(0, 0, 1)
		filter.From = &fromDate
		filter.To = &toDate
	}

	expenses, total, err := api.store.ListExpenses(r.Context(), claims.UserID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}

	writeJSON(w, http.StatusOK, listExpensesResponse{Expenses: expenses, Total: total})
}

func (api *Api) ExportExpensesHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}
	if api.exporter == nil {
		http.Error(w, "export storage is not configured", http.StatusServiceUnavailable)
		return
	}

	expenses, err := api.store.ExportExpenses(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write([]string{"id", "category", "label", "amount", "due_date", "paid_at"})
	for _, e := range expenses {
		paidAt := ""
		if e.PaidAt != nil {
			paidAt = e.PaidAt.Format("2006-01-02")
		}
		category := ""
		if e.Category != nil {
			category = e.Category.Name
		}
		cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			category,
			e.Label,
			e.Amount.StringFixed(2),
			e.DueDate.Format("2006-01-02"),
			paidAt,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	key := fmt.Sprintf("exports/%d/%s.csv", claims.UserID, uuid.NewString())
	if err := api.exporter.Upload(r.Context(), key, &buf, "text/csv"); err != nil {
		http.Error(w, "failed to upload export", http.StatusInternalServerError)
		return
	}

	url, err := api.exporter.PresignDownload(r.Context(), key, 15*time.Minute)
	if err != nil {
		http.Error(w, "failed to presign export", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
