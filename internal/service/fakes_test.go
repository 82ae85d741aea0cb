package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/stretchr/testify/mock"
)

// In-memory repositories shared by the service tests

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*domain.User{}}
}

func (r *memUsers) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memUsers) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.FirebaseUID != "" && u.FirebaseUID == uid })
}

func (r *memUsers) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUsers) UpdateFirebaseUID(ctx context.Context, userID, firebaseUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.FirebaseUID = firebaseUID
	return nil
}

func (r *memUsers) UpdateSubscriptionEndDate(ctx context.Context, userID string, endDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	end := endDate.UTC()
	u.SubscriptionEndDate = &end
	return nil
}

func (r *memUsers) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.UserProfile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[string]*domain.UserProfile{}}
}

func (r *memProfiles) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memProfiles) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.profiles[profile.UserID]; ok {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.ID = "profile-" + profile.UserID
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *memProfiles) ListByGoals(ctx context.Context, goals []domain.Goal) ([]*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.UserProfile
	for _, p := range r.profiles {
		for _, g := range goals {
			if p.Goal == g {
				cp := *p
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *memProfiles) UpdateTargets(ctx context.Context, userID string, targets domain.MacroTargets) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.MacroTargets = targets
	return nil
}

type memMeals struct {
	mu    sync.Mutex
	meals []domain.Meal
	seq   int
}

func (r *memMeals) Create(ctx context.Context, meal *domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	meal.ID = fmt.Sprintf("meal-%d", r.seq)
	r.meals = append(r.meals, *meal)
	return nil
}

func (r *memMeals) GetByID(ctx context.Context, id string) (*domain.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meals {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memMeals) ListByUserID(ctx context.Context, userID string) ([]domain.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Meal{}
	for _, m := range r.meals {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMeals) ListMissingDate(ctx context.Context) ([]domain.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Meal
	for _, m := range r.meals {
		if m.Date == "" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMeals) SetDate(ctx context.Context, id, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.meals {
		if r.meals[i].ID == id {
			r.meals[i].Date = date
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memMeals) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.meals {
		if r.meals[i].ID == id {
			r.meals = append(r.meals[:i], r.meals[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memRefreshTokens struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newMemRefreshTokens() *memRefreshTokens {
	return &memRefreshTokens{tokens: map[string]*domain.RefreshToken{}}
}

func (r *memRefreshTokens) Create(ctx context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.TokenHash] = &cp
	return nil
}

func (r *memRefreshTokens) FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok || t.Revoked {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memRefreshTokens) RevokeByHash(ctx context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[hash]; ok {
		t.Revoked = true
	}
	return nil
}

func (r *memRefreshTokens) RevokeAllByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

type memPlans struct {
	plans map[string]*domain.Plan
}

func (r *memPlans) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	if p, ok := r.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memPlans) GetActivePlans(ctx context.Context) ([]*domain.Plan, error) {
	var out []*domain.Plan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r *memPlans) UpsertByCode(ctx context.Context, plan *domain.Plan) (bool, error) {
	for _, p := range r.plans {
		if p.Code == plan.Code {
			plan.ID = p.ID
			r.plans[p.ID] = plan
			return false, nil
		}
	}
	plan.ID = "plan-" + plan.Code
	r.plans[plan.ID] = plan
	return true, nil
}

type memInvoices struct {
	mu       sync.Mutex
	invoices map[string]*domain.Invoice
	seq      int
}

func newMemInvoices() *memInvoices {
	return &memInvoices{invoices: map[string]*domain.Invoice{}}
}

func (r *memInvoices) Create(ctx context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	invoice.ID = fmt.Sprintf("inv-%d", r.seq)
	cp := *invoice
	r.invoices[invoice.ID] = &cp
	return nil
}

func (r *memInvoices) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invoices[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memInvoices) GetPendingByUserAndPlan(ctx context.Context, userID, planID string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, inv := range r.invoices {
		if inv.UserID == userID && inv.PlanID == planID && inv.Status == domain.InvoiceStatusPending && inv.ExpiryDate.After(now) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memInvoices) GetByPaymentSessionID(ctx context.Context, sessionID string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.PaymentSessionID == sessionID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memInvoices) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	return nil
}

type memSubscriptions struct {
	mu   sync.Mutex
	subs []*domain.Subscription
}

func (r *memSubscriptions) Create(ctx context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.ID = fmt.Sprintf("sub-%d", len(r.subs)+1)
	r.subs = append(r.subs, sub)
	return nil
}

func (r *memSubscriptions) GetByUserID(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSubscriptions) GetActiveByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	subs, _ := r.GetByUserID(ctx, userID)
	for _, s := range subs {
		if s.EndDate.After(time.Now()) {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

// recordingNotifier remembers published events
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.DataChangedEvent
}

func (n *recordingNotifier) PublishDataChanged(ctx context.Context, event domain.DataChangedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) reasons() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Reason
	}
	return out
}

// mockAnalyzer is a testify mock of domain.MealAnalyzer
type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeMeal(ctx context.Context, imageData []byte) (*domain.MealAnalysis, error) {
	args := m.Called(ctx, imageData)
	if a, ok := args.Get(0).(*domain.MealAnalysis); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFiles struct {
	mock.Mock
}

func (m *mockFiles) Upload(ctx context.Context, file []byte, key string, contentType string) (string, error) {
	args := m.Called(ctx, file, key, contentType)
	return args.String(0), args.Error(1)
}

type mockPaymentProvider struct {
	mock.Mock
}

func (m *mockPaymentProvider) GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*VAResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
