package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/limiter"
	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/service"
)

// Handler tests run against real services over in-memory repositories, with
// only the process boundaries (mail, Redis) faked.

type fixture struct {
	auth         *service.AuthService
	users        *service.UserService
	categories   *service.CategoryService
	transactions *service.TransactionService
	dashboards   *service.DashboardService
	userRepo     *memUserRepo
	codeRepo     *memCodeRepo
	mailer       *memMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userRepo := newMemUserRepo()
	codeRepo := newMemCodeRepo()
	categoryRepo := newMemCategoryRepo()
	transactionRepo := &memTransactionRepo{}
	mailer := &memMailer{}

	auth := service.NewAuthService(
		userRepo,
		codeRepo,
		mailer,
		limiter.New(limiter.NewMemoryStore(), 100, time.Hour),
		limiter.New(limiter.NewMemoryStore(), 100, time.Hour),
		"test-secret",
		false,
		time.Hour,
		15*time.Minute,
	)

	return &fixture{
		auth:         auth,
		users:        service.NewUserService(userRepo, codeRepo, auth, mailer),
		categories:   service.NewCategoryService(categoryRepo),
		transactions: service.NewTransactionService(transactionRepo, categoryRepo),
		dashboards:   service.NewDashboardService(transactionRepo),
		userRepo:     userRepo,
		codeRepo:     codeRepo,
		mailer:       mailer,
	}
}

func (f *fixture) createUser(t *testing.T, email string, verified bool) *model.User {
	t.Helper()

	user, err := f.auth.Register(t.Context(), "Budi", email, "correct horse battery staple", "1.2.3.4")
	require.NoError(t, err)

	if verified {
		require.NoError(t, f.auth.VerifyEmailCode(user, f.codeRepo.code(user.ID)))
	}
	return user
}

// do runs a handler with an optional authenticated user and JSON body.
func do(h http.HandlerFunc, method, target string, user *model.User, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("X-Real-IP", "1.2.3.4")
	ctx := ctxkeys.WithClientIP(r.Context(), "1.2.3.4")
	if user != nil {
		ctx = ctxkeys.WithUser(ctx, user)
	}
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// doWithPath is do with the {id} path value set, since these handlers are
// exercised without the mux.
func doWithPath(h http.HandlerFunc, method, target string, user *model.User, body any, id string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, target, &buf)
	r.SetPathValue("id", id)
	ctx := ctxkeys.WithClientIP(r.Context(), "1.2.3.4")
	if user != nil {
		ctx = ctxkeys.WithUser(ctx, user)
	}
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newSiteViewServiceForTest(f *fixture) *service.SiteViewService {
	return service.NewSiteViewService(&memSiteViewRepo{}, f.userRepo, nil, "test-key", time.Minute)
}

// Minimal in-memory repositories for the handler tests.

type memSiteViewRepo struct {
	mu     sync.Mutex
	hashes []string
}

func (r *memSiteViewRepo) Record(ipHash, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes = append(r.hashes, ipHash)
	return nil
}

func (r *memSiteViewRepo) UniqueVisitors() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	distinct := map[string]bool{}
	for _, h := range r.hashes {
		distinct[h] = true
	}
	return len(distinct), nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *memUserRepo) ByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUserRepo) ByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) ByGoogleID(googleID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Update(u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *memUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type memCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.VerificationCode
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{codes: map[string]*model.VerificationCode{}}
}

func (r *memCodeRepo) Replace(vc *model.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *vc
	r.codes[vc.UserID] = &c
	return nil
}

func (r *memCodeRepo) ByUserAndCode(userID, code string) (*model.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vc, ok := r.codes[userID]
	if !ok || vc.Code != code {
		return nil, repository.ErrCodeNotFound
	}
	c := *vc
	return &c, nil
}

func (r *memCodeRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, vc := range r.codes {
		if vc.ID == id {
			delete(r.codes, userID)
		}
	}
	return nil
}

func (r *memCodeRepo) DeleteByUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, userID)
	return nil
}

func (r *memCodeRepo) code(userID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	vc, ok := r.codes[userID]
	if !ok {
		return ""
	}
	return vc.Code
}

type memMailer struct {
	mu   sync.Mutex
	sent int
}

func (m *memMailer) QueueVerificationCode(email, name, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
}

func (m *memMailer) QueueWelcome(email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
}

type memCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*model.Category
	inUse      map[string]bool
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: map[string]*model.Category{}, inUse: map[string]bool{}}
}

func (r *memCategoryRepo) Create(c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.categories[c.ID] = &clone
	return nil
}

func (r *memCategoryRepo) ByID(userID, id string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memCategoryRepo) Categories(userID string) ([]*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Category
	for _, c := range r.categories {
		if c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) Update(c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.categories[c.ID]
	if !ok || e.UserID != c.UserID {
		return repository.ErrCategoryNotFound
	}
	clone := *c
	r.categories[c.ID] = &clone
	return nil
}

func (r *memCategoryRepo) Delete(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok || c.UserID != userID {
		return repository.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *memCategoryRepo) HasTransactions(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inUse[id], nil
}

type memTransactionRepo struct {
	mu           sync.Mutex
	transactions []*model.Transaction
}

func (r *memTransactionRepo) Create(tx *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *tx
	r.transactions = append(r.transactions, &c)
	return nil
}

func (r *memTransactionRepo) ByID(userID, id string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.transactions {
		if tx.ID == id && tx.UserID == userID {
			c := *tx
			return &c, nil
		}
	}
	return nil, repository.ErrTransactionNotFound
}

func (r *memTransactionRepo) List(userID string, filter repository.TransactionFilter) ([]*model.Transaction, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range r.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		c := *tx
		out = append(out, &c)
	}
	return out, len(out), nil
}

func (r *memTransactionRepo) Update(tx *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.transactions {
		if e.ID == tx.ID && e.UserID == tx.UserID {
			c := *tx
			r.transactions[i] = &c
			return nil
		}
	}
	return repository.ErrTransactionNotFound
}

func (r *memTransactionRepo) Delete(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, tx := range r.transactions {
		if tx.ID == id && tx.UserID == userID {
			r.transactions = append(r.transactions[:i], r.transactions[i+1:]...)
			return nil
		}
	}
	return repository.ErrTransactionNotFound
}

func (r *memTransactionRepo) SummaryBetween(userID string, from, to time.Time) (*repository.PeriodSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &repository.PeriodSummary{}
	for _, tx := range r.transactions {
		if tx.UserID != userID || tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		s.Count++
		if tx.Type == model.TransactionTypeIncome {
			s.TotalIncome += tx.Amount
		} else {
			s.TotalExpense += tx.Amount
		}
	}
	return s, nil
}

func (r *memTransactionRepo) Balance(userID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b float64
	for _, tx := range r.transactions {
		if tx.UserID != userID {
			continue
		}
		if tx.Type == model.TransactionTypeIncome {
			b += tx.Amount
		} else {
			b -= tx.Amount
		}
	}
	return b, nil
}

func (r *memTransactionRepo) ExpensesByCategory(userID string, from, to time.Time) ([]*repository.CategoryExpense, error) {
	return nil, nil
}

func (r *memTransactionRepo) Recent(userID string, limit int) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			c := *tx
			out = append(out, &c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
