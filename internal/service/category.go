package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/validation"
)

// ErrCategoryInUse is returned when deleting a category that still has
// transactions attached.
var ErrCategoryInUse = errors.New("category has transactions")

type CategoryService struct {
	categoryRepository repository.CategoryRepository
}

func NewCategoryService(categoryRepository repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepository: categoryRepository}
}

func (s *CategoryService) Categories(userID string) ([]*model.Category, error) {
	return s.categoryRepository.Categories(userID)
}

func (s *CategoryService) ByID(userID, categoryID string) (*model.Category, error) {
	return s.categoryRepository.ByID(userID, categoryID)
}

func (s *CategoryService) Create(userID, name, color string) (*model.Category, error) {
	name = strings.TrimSpace(name)

	err := validateCategory(name, color)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	category := &model.Category{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.categoryRepository.Create(category)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("category created", "category_id", category.ID, "user_id", userID)
	return category, nil
}

func (s *CategoryService) Update(userID, categoryID, name, color string) (*model.Category, error) {
	name = strings.TrimSpace(name)

	err := validateCategory(name, color)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepository.ByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Color = color
	category.UpdatedAt = time.Now()

	err = s.categoryRepository.Update(category)
	if err != nil {
		return nil, err
	}

	return category, nil
}

// Delete refuses to remove a category that still has transactions. Callers
// must reassign or delete those first.
func (s *CategoryService) Delete(userID, categoryID string) error {
	category, err := s.categoryRepository.ByID(userID, categoryID)
	if err != nil {
		return err
	}

	inUse, err := s.categoryRepository.HasTransactions(category.ID)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return ErrCategoryInUse
	}

	err = s.categoryRepository.Delete(userID, categoryID)
	if err != nil {
		return err
	}

	slog.Info("category deleted", "category_id", categoryID, "user_id", userID)
	return nil
}

func validateCategory(name, color string) error {
	fields := map[string]string{}
	if err := validation.ValidateCategoryName(name); err != nil {
		fields["name"] = err.Error()
	}
	if err := validation.ValidateColor(color); err != nil {
		fields["color"] = err.Error()
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
