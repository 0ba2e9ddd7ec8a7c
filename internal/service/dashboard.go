package service

import (
	"fmt"
	"time"

	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
)

const (
	trendMonths        = 6
	recentTransactions = 5
)

type DashboardService struct {
	transactionRepository repository.TransactionRepository

	now func() time.Time
}

func NewDashboardService(transactionRepository repository.TransactionRepository) *DashboardService {
	return &DashboardService{
		transactionRepository: transactionRepository,
		now:                   time.Now,
	}
}

// Dashboard is the aggregate view for the current month plus all-time
// balance, the recent-month trend, and the latest transactions.
type Dashboard struct {
	MonthIncome        float64                       `json:"month_income"`
	MonthExpense       float64                       `json:"month_expense"`
	MonthNet           float64                       `json:"month_net"`
	TransactionCount   int                           `json:"transaction_count"`
	Balance            float64                       `json:"balance"`
	Trend              []*MonthSummary               `json:"trend"`
	ExpensesByCategory []*repository.CategoryExpense `json:"expenses_by_category"`
	Recent             []*model.Transaction          `json:"recent_transactions"`
}

// MonthSummary is one month of the trend series.
type MonthSummary struct {
	Month   string  `json:"month"` // YYYY-MM
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Summary builds the dashboard for the user's current calendar month.
// Month boundaries are computed here and queried as half-open date ranges,
// which keeps the SQL identical across database drivers.
func (s *DashboardService) Summary(userID string) (*Dashboard, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	month, err := s.transactionRepository.SummaryBetween(userID, monthStart, nextMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize month: %w", err)
	}

	balance, err := s.transactionRepository.Balance(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}

	trend, err := s.trend(userID, monthStart)
	if err != nil {
		return nil, err
	}

	expenses, err := s.transactionRepository.ExpensesByCategory(userID, monthStart, nextMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to group expenses: %w", err)
	}
	if expenses == nil {
		expenses = []*repository.CategoryExpense{}
	}

	recent, err := s.transactionRepository.Recent(userID, recentTransactions)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent transactions: %w", err)
	}
	if recent == nil {
		recent = []*model.Transaction{}
	}

	return &Dashboard{
		MonthIncome:        month.TotalIncome,
		MonthExpense:       month.TotalExpense,
		MonthNet:           month.TotalIncome - month.TotalExpense,
		TransactionCount:   month.Count,
		Balance:            balance,
		Trend:              trend,
		ExpensesByCategory: expenses,
		Recent:             recent,
	}, nil
}

// trend returns the last trendMonths months ending with the current one,
// oldest first. Months with no transactions appear as zeros.
func (s *DashboardService) trend(userID string, monthStart time.Time) ([]*MonthSummary, error) {
	trend := make([]*MonthSummary, 0, trendMonths)

	for i := trendMonths - 1; i >= 0; i-- {
		from := monthStart.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)

		summary, err := s.transactionRepository.SummaryBetween(userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s: %w", from.Format("2006-01"), err)
		}

		trend = append(trend, &MonthSummary{
			Month:   from.Format("2006-01"),
			Income:  summary.TotalIncome,
			Expense: summary.TotalExpense,
		})
	}

	return trend, nil
}
