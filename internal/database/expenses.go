package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/billfold-io/billfold/internal/installments"
	"github.com/billfold-io/billfold/internal/models"
)

// CreateExpense inserts a single expense for userID.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	id, err := insertRow(ctx, s.db, s.driver, s.rebind(
		"INSERT INTO expenses (user_id, category_id, label, amount, due_date, paid_at) VALUES (?, ?, ?, ?, ?, ?)"),
		expense.UserID, expense.CategoryID, expense.Label, expense.Amount, expense.DueDate, expense.PaidAt,
	)
	if err != nil {
		return err
	}
	expense.ID = id
	return nil
}

// CreateInstallments persists one expense row per installment of the
// schedule, all unpaid, in a single transaction.
func (s *Store) CreateInstallments(ctx context.Context, userID, categoryID int64, label string, schedule []installments.Installment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := s.rebind(
		"INSERT INTO expenses (user_id, category_id, label, amount, due_date, paid_at) VALUES (?, ?, ?, ?, ?, ?)")
	for _, inst := range schedule {
		if _, err := insertRow(ctx, tx, s.driver, query,
			userID, categoryID, fmt.Sprintf("%s - %s", label, inst.LabelSuffix),
			inst.Amount, inst.DueDate, nil,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateExpense edits an expense the user owns.
func (s *Store) UpdateExpense(ctx context.Context, userID int64, expense *models.Expense) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE expenses SET category_id = ?, label = ?, amount = ?, due_date = ?, paid_at = ? WHERE id = ? AND user_id = ?"),
		expense.CategoryID, expense.Label, expense.Amount, expense.DueDate, expense.PaidAt, expense.ID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetExpensePayment records (or clears) the payment timestamp. nil means
// the expense goes back to unpaid; there is no sentinel date.
func (s *Store) SetExpensePayment(ctx context.Context, userID, id int64, paidAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE expenses SET paid_at = ? WHERE id = ? AND user_id = ?"),
		paidAt, id, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteExpense removes an expense the user owns.
func (s *Store) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"DELETE FROM expenses WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const expenseSelect = `SELECT e.id, e.user_id, e.category_id, e.label, e.amount, e.due_date, e.paid_at,
	c.id, c.user_id, c.icon_id, c.category, c.active, i.id, i.icon
	FROM expenses e
	JOIN categories c ON c.id = e.category_id
	JOIN icons i ON i.id = c.icon_id`

// GetExpense returns one expense with its category and icon.
func (s *Store) GetExpense(ctx context.Context, userID, id int64) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		expenseSelect+" WHERE e.id = ? AND e.user_id = ?"), id, userID)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ExpenseFilter narrows ListExpenses. Zero values mean "no filter".
type ExpenseFilter struct {
	CategoryID int64
	Search     string
	From       *time.Time
	To         *time.Time
	Skip       int
	Limit      int
}

// ListExpenses returns the filtered page, newest first, plus the total
// number of rows matching the filter regardless of paging.
func (s *Store) ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]*models.Expense, int, error) {
	where := []string{"e.user_id = ?"}
	args := []interface{}{userID}

	if filter.CategoryID != 0 {
		where = append(where, "e.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.From != nil && filter.To != nil {
		where = append(where, "e.due_date >= ?", "e.due_date <= ?")
		args = append(args, *filter.From, *filter.To)
	}
	if filter.Search != "" {
		amount := NormalizeAmountQuery(filter.Search)
		where = append(where, "(LOWER(e.label) LIKE LOWER(?) OR CAST(e.amount AS TEXT) LIKE ?)")
		args = append(args, "%"+filter.Search+"%", "%"+amount+"%")
	}

	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	countQuery := s.rebind("SELECT COUNT(*) FROM expenses e" + clause)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	query := s.rebind(expenseSelect + clause + " ORDER BY e.id DESC LIMIT ? OFFSET ?")
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, filter.Skip)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, total, rows.Err()
}

// ExportExpenses returns every expense of the user ordered by due date,
// for CSV export.
func (s *Store) ExportExpenses(ctx context.Context, userID int64) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		expenseSelect+" WHERE e.user_id = ? ORDER BY e.due_date, e.id"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		expense  models.Expense
		category models.Category
		icon     models.Icon
	)
	err := row.Scan(&expense.ID, &expense.UserID, &expense.CategoryID,
		&expense.Label, &expense.Amount, &expense.DueDate, &expense.PaidAt,
		&category.ID, &category.UserID, &category.IconID, &category.Name,
		&category.Active, &icon.ID, &icon.Icon)
	if err != nil {
		return nil, err
	}
	category.Icon = &icon
	expense.Category = &category
	return &expense, nil
}

// NormalizeAmountQuery strips currency punctuation from a search term so
// it can be compared against the stored decimal text: thousands dots are
// dropped, the decimal comma becomes a dot, spaces and the R$ symbol go
// away, and trailing zeros after the decimal point are trimmed.
func NormalizeAmountQuery(term string) string {
	amount := strings.ReplaceAll(term, ".", "")
	amount = strings.ReplaceAll(amount, ",", ".")
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "R", "")
	amount = strings.ReplaceAll(amount, "$", "")
	if strings.Contains(amount, ".") {
		amount = strings.TrimRight(amount, "0")
		amount = strings.TrimRight(amount, ".")
	}
	return amount
}
