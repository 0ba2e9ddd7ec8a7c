package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uangku/uangku/internal/repository"
)

func TestCategoryCreate(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)

	category, err := svc.Create("user-1", "  Groceries ", "#3b82f6")
	require.NoError(t, err)

	assert.Equal(t, "Groceries", category.Name)
	assert.Equal(t, "#3b82f6", category.Color)
	assert.NotEmpty(t, category.ID)
}

func TestCategoryCreateValidation(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo())

	_, err := svc.Create("user-1", "", "not-a-color")

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "color")
}

func TestCategoryUpdateScopedToOwner(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)

	category, err := svc.Create("user-1", "Groceries", "#3b82f6")
	require.NoError(t, err)

	_, err = svc.Update("user-2", category.ID, "Stolen", "#ff0000")
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)

	updated, err := svc.Update("user-1", category.ID, "Food", "#22c55e")
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)
}

func TestCategoryDeleteBlockedWhileInUse(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)

	category, err := svc.Create("user-1", "Groceries", "#3b82f6")
	require.NoError(t, err)
	repo.transactions[category.ID] = 2

	err = svc.Delete("user-1", category.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	repo.transactions[category.ID] = 0
	assert.NoError(t, svc.Delete("user-1", category.ID))
}

func TestCategoryDeleteScopedToOwner(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)

	category, err := svc.Create("user-1", "Groceries", "#3b82f6")
	require.NoError(t, err)

	err = svc.Delete("user-2", category.ID)
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}
