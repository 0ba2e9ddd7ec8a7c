package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/validation"
)

const transactionsPerPage = 15

type TransactionService struct {
	transactionRepository repository.TransactionRepository
	categoryRepository    repository.CategoryRepository
}

func NewTransactionService(
	transactionRepository repository.TransactionRepository,
	categoryRepository repository.CategoryRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepository: transactionRepository,
		categoryRepository:    categoryRepository,
	}
}

// TransactionInput carries the user-supplied fields for create and update.
type TransactionInput struct {
	CategoryID  string
	Description string
	Amount      float64
	Type        string
	Date        string
}

// TransactionPage is one page of list results.
type TransactionPage struct {
	Transactions []*model.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	PerPage      int                  `json:"per_page"`
	LastPage     int                  `json:"last_page"`
}

func (s *TransactionService) List(userID string, filter repository.TransactionFilter) (*TransactionPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	filter.PerPage = transactionsPerPage

	transactions, total, err := s.transactionRepository.List(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if transactions == nil {
		transactions = []*model.Transaction{}
	}

	lastPage := (total + filter.PerPage - 1) / filter.PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &TransactionPage{
		Transactions: transactions,
		Total:        total,
		Page:         filter.Page,
		PerPage:      filter.PerPage,
		LastPage:     lastPage,
	}, nil
}

func (s *TransactionService) ByID(userID, txID string) (*model.Transaction, error) {
	return s.transactionRepository.ByID(userID, txID)
}

func (s *TransactionService) Create(userID string, input TransactionInput) (*model.Transaction, error) {
	date, err := s.validateInput(userID, &input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx := &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Amount:      input.Amount,
		Type:        input.Type,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.transactionRepository.Create(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("transaction created", "transaction_id", tx.ID, "user_id", userID, "type", tx.Type)
	return s.transactionRepository.ByID(userID, tx.ID)
}

func (s *TransactionService) Update(userID, txID string, input TransactionInput) (*model.Transaction, error) {
	date, err := s.validateInput(userID, &input)
	if err != nil {
		return nil, err
	}

	tx, err := s.transactionRepository.ByID(userID, txID)
	if err != nil {
		return nil, err
	}

	tx.CategoryID = input.CategoryID
	tx.Description = input.Description
	tx.Amount = input.Amount
	tx.Type = input.Type
	tx.Date = date
	tx.UpdatedAt = time.Now()

	err = s.transactionRepository.Update(tx)
	if err != nil {
		return nil, err
	}

	return s.transactionRepository.ByID(userID, txID)
}

func (s *TransactionService) Delete(userID, txID string) error {
	err := s.transactionRepository.Delete(userID, txID)
	if err != nil {
		return err
	}

	slog.Info("transaction deleted", "transaction_id", txID, "user_id", userID)
	return nil
}

// validateInput checks all fields and verifies the category belongs to the
// user. A foreign category id is reported as a plain validation failure, not
// a not-found, so the response does not leak other users' ids.
func (s *TransactionService) validateInput(userID string, input *TransactionInput) (time.Time, error) {
	input.Description = strings.TrimSpace(input.Description)

	fields := map[string]string{}
	if err := validation.ValidateDescription(input.Description); err != nil {
		fields["description"] = err.Error()
	}
	if err := validation.ValidateAmount(input.Amount); err != nil {
		fields["amount"] = err.Error()
	}
	if err := validation.ValidateTransactionType(input.Type); err != nil {
		fields["type"] = err.Error()
	}

	date, err := validation.ParseDate(input.Date)
	if err != nil {
		fields["date"] = err.Error()
	}

	if input.CategoryID == "" {
		fields["category_id"] = "category is required"
	} else if _, ok := fields["category_id"]; !ok {
		_, err := s.categoryRepository.ByID(userID, input.CategoryID)
		if err != nil {
			fields["category_id"] = "invalid category"
		}
	}

	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}

	return date, nil
}
