package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"food-storefront/mock"
	"food-storefront/models"
	"food-storefront/store"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Notify(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
}

func (r *recordingNotifier) Close() {}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

type testEnv struct {
	store    *store.Memory
	notifier *recordingNotifier
	menu     *Menu
	cart     *Cart
	subs     *Subscriptions
	catering *Catering
	accounts *Accounts
	admin    *Admin
	now      time.Time
}

var errStoreDown = errors.New("store unavailable")

// failingStore fails the inserts its flags name and passes everything else
// through to the wrapped store.
type failingStore struct {
	store.Store
	orders, subscriptions, catering bool
}

func (f *failingStore) CreateOrder(ctx context.Context, o models.Order) error {
	if f.orders {
		return errStoreDown
	}
	return f.Store.CreateOrder(ctx, o)
}

func (f *failingStore) CreateSubscription(ctx context.Context, s models.Subscription) error {
	if f.subscriptions {
		return errStoreDown
	}
	return f.Store.CreateSubscription(ctx, s)
}

func (f *failingStore) CreateCateringRequest(ctx context.Context, r models.CateringRequest) error {
	if f.catering {
		return errStoreDown
	}
	return f.Store.CreateCateringRequest(ctx, r)
}

// failWith wraps the env's store in a copy of flags.
func failWith(flags failingStore) func(store.Store) store.Store {
	return func(st store.Store) store.Store {
		flags.Store = st
		return &flags
	}
}

// newTestEnv wires every service over a seeded memory store with the clock
// fixed at 2024-10-14 09:00 UTC.
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil)
}

// newTestEnvWith is newTestEnv with the services reading and writing through
// wrap(memory) when wrap is set. env.store stays the bare memory store.
func newTestEnvWith(t *testing.T, wrap func(store.Store) store.Store) *testEnv {
	t.Helper()
	acct, err := mock.LoadUserAccount()
	require.NoError(t, err)
	dash, err := mock.LoadAdminDashboard()
	require.NoError(t, err)

	env := &testEnv{
		store:    store.NewMemory(store.Seed{Account: acct, Dashboard: dash}),
		notifier: &recordingNotifier{},
		now:      time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	var st store.Store = env.store
	if wrap != nil {
		st = wrap(env.store)
	}

	env.menu, err = NewMenu(st)
	require.NoError(t, err)
	env.cart = NewCart(st, env.menu, env.notifier, DefaultDeliveryFee)
	env.cart.now = clock
	env.subs, err = NewSubscriptions(st, env.notifier)
	require.NoError(t, err)
	env.subs.now = clock
	env.catering = NewCatering(st, env.menu, env.notifier)
	env.catering.now = clock
	throttle := NewLoginThrottle()
	throttle.now = clock
	env.accounts = NewAccounts(st, throttle, "test-secret", time.Hour)
	env.accounts.now = clock
	env.admin = NewAdmin(st, env.menu, env.notifier)
	return env
}
