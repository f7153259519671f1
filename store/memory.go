package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"food-storefront/models"
)

// Memory keeps all state in process. Values handed out are copies.
type Memory struct {
	mu sync.RWMutex

	visitors     map[string]models.VisitorState
	availability map[string]bool
	accounts     map[string]models.UserAccount
	sessions     map[string]models.Session

	users         []models.User
	orders        []models.Order
	subscriptions []models.Subscription
	catering      []models.CateringRequest
}

var _ Store = (*Memory)(nil)

func NewMemory(seed Seed) *Memory {
	m := &Memory{
		visitors:     make(map[string]models.VisitorState),
		availability: make(map[string]bool),
		accounts:     make(map[string]models.UserAccount),
		sessions:     make(map[string]models.Session),
	}
	if seed.Account != nil {
		m.accounts[seed.Account.ID] = cloneAccount(*seed.Account)
	}
	if d := seed.Dashboard; d != nil {
		for _, u := range d.Users {
			m.users = append(m.users, cloneUser(u))
		}
		for _, o := range d.Orders {
			m.orders = append(m.orders, cloneOrder(o))
		}
		for _, s := range d.Subscriptions {
			m.subscriptions = append(m.subscriptions, cloneSubscription(s))
		}
	}
	return m
}

func (m *Memory) Close() {}

func (m *Memory) GetVisitor(_ context.Context, visitorID string) (*models.VisitorState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.visitors[visitorID]
	if !ok {
		v = models.NewVisitorState()
	}
	out := cloneVisitor(v)
	return &out, nil
}

func (m *Memory) UpdateVisitor(_ context.Context, visitorID string, fn func(*models.VisitorState) error) (*models.VisitorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.visitors[visitorID]
	if !ok {
		cur = models.NewVisitorState()
	}
	work := cloneVisitor(cur)
	if err := fn(&work); err != nil {
		return nil, err
	}
	m.visitors[visitorID] = work
	out := cloneVisitor(work)
	return &out, nil
}

func (m *Memory) MenuAvailability(_ context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.availability))
	for k, v := range m.availability {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) SetMenuAvailability(_ context.Context, itemID string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availability[itemID] = available
	return nil
}

func (m *Memory) ToggleMenuAvailability(_ context.Context, itemID string, fallback bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.availability[itemID]
	if !ok {
		cur = fallback
	}
	m.availability[itemID] = !cur
	return !cur, nil
}

func (m *Memory) GetAccount(_ context.Context, userID string) (*models.UserAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneAccount(a)
	return &out, nil
}

func (m *Memory) PutAccount(_ context.Context, account *models.UserAccount) error {
	if account == nil || account.ID == "" {
		return fmt.Errorf("account id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = cloneAccount(*account)
	return nil
}

func (m *Memory) UpdateAccount(_ context.Context, userID string, fn func(*models.UserAccount) error) (*models.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	work := cloneAccount(cur)
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.ID = userID
	m.accounts[userID] = work
	out := cloneAccount(work)
	return &out, nil
}

func (m *Memory) CreateSession(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (m *Memory) UpdateUser(_ context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID != id {
			continue
		}
		work := cloneUser(m.users[i])
		if err := fn(&work); err != nil {
			return nil, err
		}
		work.ID = id
		m.users[i] = work
		out := cloneUser(work)
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) ListOrders(_ context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (m *Memory) CreateOrder(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if existing.ID == o.ID {
			return fmt.Errorf("order %s already exists", o.ID)
		}
	}
	m.orders = append(m.orders, cloneOrder(o))
	return nil
}

func (m *Memory) UpdateOrder(_ context.Context, id string, fn func(*models.Order) error) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID != id {
			continue
		}
		work := cloneOrder(m.orders[i])
		if err := fn(&work); err != nil {
			return nil, err
		}
		work.ID = id
		m.orders[i] = work
		out := cloneOrder(work)
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) ListSubscriptions(_ context.Context) ([]models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Subscription, 0, len(m.subscriptions))
	for _, s := range m.subscriptions {
		out = append(out, cloneSubscription(s))
	}
	return out, nil
}

func (m *Memory) CreateSubscription(_ context.Context, s models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.subscriptions {
		if existing.ID == s.ID {
			return fmt.Errorf("subscription %s already exists", s.ID)
		}
	}
	m.subscriptions = append(m.subscriptions, cloneSubscription(s))
	return nil
}

func (m *Memory) UpdateSubscription(_ context.Context, id string, fn func(*models.Subscription) error) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subscriptions {
		if m.subscriptions[i].ID != id {
			continue
		}
		work := cloneSubscription(m.subscriptions[i])
		if err := fn(&work); err != nil {
			return nil, err
		}
		work.ID = id
		m.subscriptions[i] = work
		out := cloneSubscription(work)
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) ListCateringRequests(_ context.Context) ([]models.CateringRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CateringRequest, 0, len(m.catering))
	for _, r := range m.catering {
		r.FormData.MenuItems = append([]string(nil), r.FormData.MenuItems...)
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) CreateCateringRequest(_ context.Context, r models.CateringRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.FormData.MenuItems = append([]string(nil), r.FormData.MenuItems...)
	m.catering = append(m.catering, r)
	return nil
}

// Nested slices and maps make a field-by-field copy of these two error
// prone; a JSON round trip keeps them in step with the models.
func cloneVisitor(v models.VisitorState) models.VisitorState {
	var out models.VisitorState
	mustRoundTrip(v, &out)
	if out.Cart.Items == nil {
		out.Cart.Items = []models.CartItem{}
	}
	if out.Catering.Errors == nil {
		out.Catering.Errors = map[string]string{}
	}
	if out.Catering.FormData.MenuItems == nil {
		out.Catering.FormData.MenuItems = []string{}
	}
	return out
}

func cloneAccount(a models.UserAccount) models.UserAccount {
	var out models.UserAccount
	mustRoundTrip(a, &out)
	return out
}

func mustRoundTrip(in, out any) {
	b, err := json.Marshal(in)
	if err != nil {
		panic(fmt.Sprintf("store: marshal %T: %v", in, err))
	}
	if err := json.Unmarshal(b, out); err != nil {
		panic(fmt.Sprintf("store: unmarshal %T: %v", out, err))
	}
}

func cloneUser(u models.User) models.User {
	if u.Subscription != nil {
		s := *u.Subscription
		u.Subscription = &s
	}
	return u
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]string(nil), o.Items...)
	return o
}

func cloneSubscription(s models.Subscription) models.Subscription {
	if s.NextBilling != nil {
		t := *s.NextBilling
		s.NextBilling = &t
	}
	return s
}
