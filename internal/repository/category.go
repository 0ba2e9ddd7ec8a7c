package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uangku/uangku/internal/model"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

type CategoryRepository interface {
	Create(category *model.Category) error
	ByID(userID, categoryID string) (*model.Category, error)
	Categories(userID string) ([]*model.Category, error)
	Update(category *model.Category) error
	Delete(userID, categoryID string) error
	HasTransactions(categoryID string) (bool, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	query := `INSERT INTO categories (id, user_id, name, color, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		category.ID,
		category.UserID,
		category.Name,
		category.Color,
		category.CreatedAt,
		category.UpdatedAt,
	)
	return err
}

func (r *categoryRepository) ByID(userID, categoryID string) (*model.Category, error) {
	category := &model.Category{}
	query := `SELECT id, user_id, name, color, created_at, updated_at, 0 AS transaction_count
	          FROM categories WHERE id = $1 AND user_id = $2`

	err := r.db.Get(category, query, categoryID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}

	return category, err
}

// Categories lists the user's categories newest first, each with its
// transaction count.
func (r *categoryRepository) Categories(userID string) ([]*model.Category, error) {
	var categories []*model.Category
	query := `SELECT c.id, c.user_id, c.name, c.color, c.created_at, c.updated_at,
	                 (SELECT COUNT(*) FROM transactions t WHERE t.category_id = c.id) AS transaction_count
	          FROM categories c
	          WHERE c.user_id = $1
	          ORDER BY c.created_at DESC`

	err := r.db.Select(&categories, query, userID)
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	query := `UPDATE categories SET name = $1, color = $2, updated_at = $3 WHERE id = $4 AND user_id = $5`

	result, err := r.db.Exec(query,
		category.Name,
		category.Color,
		time.Now(),
		category.ID,
		category.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepository) Delete(userID, categoryID string) error {
	result, err := r.db.Exec(`DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepository) HasTransactions(categoryID string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE category_id = $1`, categoryID).Scan(&count)
	return count > 0, err
}
