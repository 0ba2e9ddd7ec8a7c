package service

import (
	"errors"
	"sync"
	"time"

	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) ByGoogleID(googleID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.VerificationCode // keyed by user id, at most one
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: map[string]*model.VerificationCode{}}
}

func (r *fakeCodeRepo) Replace(code *model.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *code
	r.codes[code.UserID] = &clone
	return nil
}

func (r *fakeCodeRepo) ByUserAndCode(userID, code string) (*model.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vc, ok := r.codes[userID]
	if !ok || vc.Code != code {
		return nil, repository.ErrCodeNotFound
	}
	clone := *vc
	return &clone, nil
}

func (r *fakeCodeRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, vc := range r.codes {
		if vc.ID == id {
			delete(r.codes, userID)
		}
	}
	return nil
}

func (r *fakeCodeRepo) DeleteByUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, userID)
	return nil
}

func (r *fakeCodeRepo) liveCode(userID string) *model.VerificationCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[userID]
}

type queuedMail struct {
	email string
	name  string
	code  string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []queuedMail
	welcomes []string
}

func (m *fakeMailer) QueueVerificationCode(email, name, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, queuedMail{email: email, name: name, code: code})
}

func (m *fakeMailer) QueueWelcome(email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, email)
}

func (m *fakeMailer) welcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.welcomes)
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() queuedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeCategoryRepo struct {
	mu           sync.Mutex
	categories   map[string]*model.Category
	transactions map[string]int // category id -> count
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories:   map[string]*model.Category{},
		transactions: map[string]int{},
	}
}

func (r *fakeCategoryRepo) Create(category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) ByID(userID, categoryID string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[categoryID]
	if !ok || c.UserID != userID {
		return nil, repository.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCategoryRepo) Categories(userID string) ([]*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Category
	for _, c := range r.categories {
		if c.UserID == userID {
			clone := *c
			clone.TransactionCount = r.transactions[c.ID]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[category.ID]
	if !ok || c.UserID != category.UserID {
		return repository.ErrCategoryNotFound
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) Delete(userID, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[categoryID]
	if !ok || c.UserID != userID {
		return repository.ErrCategoryNotFound
	}
	delete(r.categories, categoryID)
	return nil
}

func (r *fakeCategoryRepo) HasTransactions(categoryID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transactions[categoryID] > 0, nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions []*model.Transaction
}

func (r *fakeTransactionRepo) Create(tx *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *tx
	r.transactions = append(r.transactions, &clone)
	return nil
}

func (r *fakeTransactionRepo) ByID(userID, txID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.transactions {
		if tx.ID == txID && tx.UserID == userID {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, repository.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) List(userID string, filter repository.TransactionFilter) ([]*model.Transaction, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, len(out), nil
}

func (r *fakeTransactionRepo) Update(tx *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.transactions {
		if existing.ID == tx.ID && existing.UserID == tx.UserID {
			clone := *tx
			r.transactions[i] = &clone
			return nil
		}
	}
	return repository.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) Delete(userID, txID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, tx := range r.transactions {
		if tx.ID == txID && tx.UserID == userID {
			r.transactions = append(r.transactions[:i], r.transactions[i+1:]...)
			return nil
		}
	}
	return repository.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) SummaryBetween(userID string, from, to time.Time) (*repository.PeriodSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &repository.PeriodSummary{}
	for _, tx := range r.transactions {
		if tx.UserID != userID || tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		summary.Count++
		if tx.Type == model.TransactionTypeIncome {
			summary.TotalIncome += tx.Amount
		} else {
			summary.TotalExpense += tx.Amount
		}
	}
	return summary, nil
}

func (r *fakeTransactionRepo) Balance(userID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var balance float64
	for _, tx := range r.transactions {
		if tx.UserID != userID {
			continue
		}
		if tx.Type == model.TransactionTypeIncome {
			balance += tx.Amount
		} else {
			balance -= tx.Amount
		}
	}
	return balance, nil
}

func (r *fakeTransactionRepo) ExpensesByCategory(userID string, from, to time.Time) ([]*repository.CategoryExpense, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) Recent(userID string, limit int) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			clone := *tx
			out = append(out, &clone)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var errStorageDown = errors.New("storage unavailable")

type fakeSiteViewRepo struct {
	mu     sync.Mutex
	views  map[string]map[string]bool // day -> ip hash set
	failed bool
}

func newFakeSiteViewRepo() *fakeSiteViewRepo {
	return &fakeSiteViewRepo{views: map[string]map[string]bool{}}
}

func (r *fakeSiteViewRepo) Record(ipHash, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed {
		return errStorageDown
	}
	if r.views[day] == nil {
		r.views[day] = map[string]bool{}
	}
	r.views[day][ipHash] = true
	return nil
}

func (r *fakeSiteViewRepo) UniqueVisitors() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	distinct := map[string]bool{}
	for _, hashes := range r.views {
		for h := range hashes {
			distinct[h] = true
		}
	}
	return len(distinct), nil
}
