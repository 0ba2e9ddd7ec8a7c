package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangku/uangku/internal/model"
)

func TestCategoryRepositoryCategoriesIncludesCounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM categories c").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "color", "created_at", "updated_at", "transaction_count"}).
			AddRow("cat-2", "user-1", "Rent", "#ef4444", now, now, 0).
			AddRow("cat-1", "user-1", "Groceries", "#3b82f6", now.Add(-time.Hour), now, 12))

	categories, err := repo.Categories("user-1")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Rent", categories[0].Name)
	assert.Equal(t, 12, categories[1].TransactionCount)
}

func TestCategoryRepositoryUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec("UPDATE categories SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(&model.Category{ID: "missing", UserID: "user-1", Name: "X", Color: "#000000"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryRepositoryDeleteScopedToUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("cat-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete("user-2", "cat-1"), ErrCategoryNotFound)
}

func TestCategoryRepositoryHasTransactions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	inUse, err := repo.HasTransactions("cat-1")
	require.NoError(t, err)
	assert.True(t, inUse)
}
