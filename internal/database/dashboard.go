package database

import (
	"context"
	"time"

	"github.com/billfold-io/billfold/internal/models"
	"github.com/shopspring/decimal"
)

// CountOverdue counts unpaid expenses due strictly before ref.
func (s *Store) CountOverdue(ctx context.Context, userID int64, ref time.Time) (int, error) {
	return s.countExpenses(ctx, s.rebind(
		"SELECT COUNT(*) FROM expenses WHERE user_id = ? AND due_date < ? AND paid_at IS NULL"),
		userID, ref)
}

// CountPending counts unpaid expenses due at or after ref.
func (s *Store) CountPending(ctx context.Context, userID int64, ref time.Time) (int, error) {
	return s.countExpenses(ctx, s.rebind(
		"SELECT COUNT(*) FROM expenses WHERE user_id = ? AND due_date >= ? AND paid_at IS NULL"),
		userID, ref)
}

// CountDueBetween counts expenses due in [from, to], paid or not.
func (s *Store) CountDueBetween(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	return s.countExpenses(ctx, s.rebind(
		"SELECT COUNT(*) FROM expenses WHERE user_id = ? AND due_date >= ? AND due_date <= ?"),
		userID, from, to)
}

func (s *Store) countExpenses(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SumDueBetween totals the amounts of expenses due in [from, to].
func (s *Store) SumDueBetween(ctx context.Context, userID int64, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT SUM(amount) FROM expenses WHERE user_id = ? AND due_date >= ? AND due_date <= ?"),
		userID, from, to,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// CategoryTotals groups the user's expense amounts by category name for
// expenses due in [from, to]; the pie-chart query.
func (s *Store) CategoryTotals(ctx context.Context, userID int64, from, to time.Time) ([]models.CategorySum, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT c.category, SUM(e.amount)
		 FROM categories c
		 JOIN expenses e ON c.id = e.category_id
		 WHERE e.user_id = ? AND e.due_date >= ? AND e.due_date <= ?
		 GROUP BY c.category
		 ORDER BY c.category`),
		userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []models.CategorySum
	for rows.Next() {
		var sum models.CategorySum
		if err := rows.Scan(&sum.Category, &sum.Total); err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}
