package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uangku/uangku/internal/model"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionFilter narrows List results. Zero values mean "no filter".
type TransactionFilter struct {
	Search     string
	Type       string
	CategoryID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PerPage    int
}

// PeriodSummary aggregates transaction totals over a date range.
type PeriodSummary struct {
	TotalIncome  float64 `db:"total_income"`
	TotalExpense float64 `db:"total_expense"`
	Count        int     `db:"total_count"`
}

// CategoryExpense is a per-category expense total.
type CategoryExpense struct {
	Name  string  `db:"name" json:"name"`
	Color string  `db:"color" json:"color"`
	Total float64 `db:"total" json:"total"`
}

type TransactionRepository interface {
	Create(tx *model.Transaction) error
	ByID(userID, txID string) (*model.Transaction, error)
	List(userID string, filter TransactionFilter) ([]*model.Transaction, int, error)
	Update(tx *model.Transaction) error
	Delete(userID, txID string) error
	SummaryBetween(userID string, from, to time.Time) (*PeriodSummary, error)
	Balance(userID string) (float64, error)
	ExpensesByCategory(userID string, from, to time.Time) ([]*CategoryExpense, error)
	Recent(userID string, limit int) ([]*model.Transaction, error)
}

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `t.id, t.user_id, t.category_id, t.description, t.amount, t.type, t.date, t.created_at, t.updated_at,
	c.name AS category_name, c.color AS category_color`

func (r *transactionRepository) Create(tx *model.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, category_id, description, amount, type, date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		tx.ID,
		tx.UserID,
		tx.CategoryID,
		tx.Description,
		tx.Amount,
		tx.Type,
		tx.Date,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	return err
}

func (r *transactionRepository) ByID(userID, txID string) (*model.Transaction, error) {
	tx := &model.Transaction{}
	query := `SELECT ` + transactionColumns + `
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          WHERE t.id = $1 AND t.user_id = $2`

	err := r.db.Get(tx, query, txID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}

	return tx, err
}

// List returns a filtered page of the user's transactions, newest first,
// along with the total row count for pagination.
func (r *transactionRepository) List(userID string, filter TransactionFilter) ([]*model.Transaction, int, error) {
	where := []string{"t.user_id = $1"}
	args := []any{userID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Search != "" {
		addArg("t.description LIKE $%d", "%"+filter.Search+"%")
	}
	if filter.Type != "" {
		addArg("t.type = $%d", filter.Type)
	}
	if filter.CategoryID != "" {
		addArg("t.category_id = $%d", filter.CategoryID)
	}
	if filter.DateFrom != nil {
		addArg("t.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addArg("t.date <= $%d", *filter.DateTo)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions t WHERE ` + whereClause
	err := r.db.QueryRow(countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 15
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT `+transactionColumns+`
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          WHERE %s
	          ORDER BY t.date DESC, t.id DESC
	          LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	var transactions []*model.Transaction
	err = r.db.Select(&transactions, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (r *transactionRepository) Update(tx *model.Transaction) error {
	query := `UPDATE transactions
	          SET category_id = $1, description = $2, amount = $3, type = $4, date = $5, updated_at = $6
	          WHERE id = $7 AND user_id = $8`

	result, err := r.db.Exec(query,
		tx.CategoryID,
		tx.Description,
		tx.Amount,
		tx.Type,
		tx.Date,
		time.Now(),
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *transactionRepository) Delete(userID, txID string) error {
	result, err := r.db.Exec(`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, txID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// SummaryBetween totals income and expense for dates in [from, to).
func (r *transactionRepository) SummaryBetween(userID string, from, to time.Time) (*PeriodSummary, error) {
	summary := &PeriodSummary{}
	query := `SELECT
	            COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS total_income,
	            COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expense,
	            COUNT(*) AS total_count
	          FROM transactions
	          WHERE user_id = $1 AND date >= $2 AND date < $3`

	err := r.db.Get(summary, query, userID, from, to)
	return summary, err
}

// Balance is the all-time income minus expense total.
func (r *transactionRepository) Balance(userID string) (float64, error) {
	var balance float64
	query := `SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)
	          FROM transactions WHERE user_id = $1`

	err := r.db.QueryRow(query, userID).Scan(&balance)
	return balance, err
}

func (r *transactionRepository) ExpensesByCategory(userID string, from, to time.Time) ([]*CategoryExpense, error) {
	var expenses []*CategoryExpense
	query := `SELECT c.name, c.color, SUM(t.amount) AS total
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          WHERE t.user_id = $1 AND t.type = 'expense' AND t.date >= $2 AND t.date < $3
	          GROUP BY c.id, c.name, c.color
	          ORDER BY total DESC`

	err := r.db.Select(&expenses, query, userID, from, to)
	if err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *transactionRepository) Recent(userID string, limit int) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	query := `SELECT ` + transactionColumns + `
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          WHERE t.user_id = $1
	          ORDER BY t.date DESC, t.id DESC
	          LIMIT $2`

	err := r.db.Select(&transactions, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
