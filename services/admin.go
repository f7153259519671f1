package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"food-storefront/models"
	"food-storefront/notify"
	"food-storefront/store"
)

const (
	OrdersPerPage       = 10
	RecentSubscriptions = 5
)

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrUserNotFound            = errors.New("user not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrSubscriptionNotFound    = errors.New("subscription not found")
)

// ValidStatusTransition returns true if an order may move from -> to.
// pending -> processing|cancelled, processing -> completed|cancelled.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusProcessing || to == models.OrderStatusCancelled
	case models.OrderStatusProcessing:
		return to == models.OrderStatusCompleted || to == models.OrderStatusCancelled
	default:
		return false
	}
}

// ValidSubscriptionTransition returns true if a subscription may move from -> to.
// Cancelled is terminal.
func ValidSubscriptionTransition(from, to string) bool {
	switch from {
	case models.SubscriptionStatusActive:
		return to == models.SubscriptionStatusPaused || to == models.SubscriptionStatusCancelled
	case models.SubscriptionStatusPaused:
		return to == models.SubscriptionStatusActive || to == models.SubscriptionStatusCancelled
	default:
		return false
	}
}

// Admin backs the dashboard pages.
type Admin struct {
	store    store.Store
	menu     *Menu
	notifier notify.Notifier
}

func NewAdmin(st store.Store, menu *Menu, n notify.Notifier) *Admin {
	if n == nil {
		n = notify.Nop{}
	}
	return &Admin{store: st, menu: menu, notifier: n}
}

func (a *Admin) Overview(ctx context.Context) (*models.Overview, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	orders, err := a.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	subs, err := a.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	catering, err := a.store.ListCateringRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catering requests: %w", err)
	}

	o := &models.Overview{
		TotalUsers:       len(users),
		TotalOrders:      len(orders),
		CateringRequests: len(catering),
		Subscriptions:    SubscriptionStatsOf(subs),
	}
	for _, u := range users {
		if u.Status == models.UserStatusActive {
			o.ActiveUsers++
		}
	}
	var revenue float64
	for _, ord := range orders {
		switch ord.Status {
		case models.OrderStatusPending:
			o.PendingOrders++
		case models.OrderStatusCompleted:
			revenue += ord.Total
		}
	}
	o.Revenue = roundCents(revenue)
	return o, nil
}

// UserQuery drives the users table.
type UserQuery struct {
	Status  string // all|active|inactive
	Search  string
	SortBy  string // name|joinDate|totalSpent
	Order   string // asc|desc
	Page    int    // 0 returns every row
	PerPage int
}

func (a *Admin) Users(ctx context.Context, q UserQuery) (*models.Page[models.User], error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return FilterUsers(users, q), nil
}

func FilterUsers(users []models.User, q UserQuery) *models.Page[models.User] {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if q.Status != "" && q.Status != "all" && u.Status != q.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}

	desc := q.Order == "desc"
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		switch q.SortBy {
		case "joinDate":
			return a.JoinDate.Before(b.JoinDate)
		case "totalSpent":
			return a.TotalSpent < b.TotalSpent
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})

	if q.Page <= 0 {
		return &models.Page[models.User]{Items: out, Page: 1, PerPage: len(out), TotalItems: len(out), TotalPages: 1}
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = OrdersPerPage
	}
	return paginate(out, q.Page, perPage)
}

func (a *Admin) SetUserStatus(ctx context.Context, id, status string) (*models.User, error) {
	if status != models.UserStatusActive && status != models.UserStatusInactive {
		return nil, ErrInvalidStatus
	}
	u, err := a.store.UpdateUser(ctx, id, func(u *models.User) error {
		u.Status = status
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (a *Admin) ToggleUserStatus(ctx context.Context, id string) (*models.User, error) {
	u, err := a.store.UpdateUser(ctx, id, func(u *models.User) error {
		if u.Status == models.UserStatusActive {
			u.Status = models.UserStatusInactive
		} else {
			u.Status = models.UserStatusActive
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// OrderQuery drives the orders table.
type OrderQuery struct {
	Status string // all|pending|processing|completed|cancelled
	Search string // customer name or order id
	SortBy string // date|total|customer
	Order  string // asc|desc, default desc
	Page   int
}

func (a *Admin) Orders(ctx context.Context, q OrderQuery) (*models.Page[models.Order], error) {
	orders, err := a.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return FilterOrders(orders, q), nil
}

func FilterOrders(orders []models.Order, q OrderQuery) *models.Page[models.Order] {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if q.Status != "" && q.Status != "all" && o.Status != q.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(o.CustomerName), search) && !strings.Contains(strings.ToLower(o.ID), search) {
			continue
		}
		out = append(out, o)
	}

	asc := q.Order == "asc"
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !asc {
			a, b = b, a
		}
		switch q.SortBy {
		case "total":
			return a.Total < b.Total
		case "customer":
			return strings.ToLower(a.CustomerName) < strings.ToLower(b.CustomerName)
		default:
			return a.Date.Before(b.Date)
		}
	})
	return paginate(out, q.Page, OrdersPerPage)
}

// paginate clamps page to [1, max(totalPages, 1)].
func paginate[T any](rows []T, page, perPage int) *models.Page[T] {
	total := len(rows)
	totalPages := (total + perPage - 1) / perPage
	maxPage := max(totalPages, 1)
	page = min(max(page, 1), maxPage)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	return &models.Page[T]{
		Items:      append([]T{}, rows[start:end]...),
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func (a *Admin) SetOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	var from string
	o, err := a.store.UpdateOrder(ctx, id, func(o *models.Order) error {
		if !ValidStatusTransition(o.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, status)
		}
		from = o.Status
		o.Status = status
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	a.notifier.Notify(ctx, notify.StatusChanged("Order", id, from, status))
	return o, nil
}

// SubscriptionStatsOf counts subscriptions by status. Monthly revenue is the
// sum of active subscription prices.
func SubscriptionStatsOf(subs []models.Subscription) models.SubscriptionStats {
	st := models.SubscriptionStats{TotalSubscriptions: len(subs)}
	var revenue float64
	for _, s := range subs {
		switch s.Status {
		case models.SubscriptionStatusActive:
			st.ActiveSubscriptions++
			revenue += s.Price
		case models.SubscriptionStatusPaused:
			st.PausedSubscriptions++
		case models.SubscriptionStatusCancelled:
			st.CancelledSubscriptions++
		}
	}
	st.MonthlyRevenue = roundCents(revenue)
	return st
}

func (a *Admin) Subscriptions(ctx context.Context) (*models.SubscriptionsSummary, error) {
	subs, err := a.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return SummarizeSubscriptions(subs), nil
}

func SummarizeSubscriptions(subs []models.Subscription) *models.SubscriptionsSummary {
	counts := map[string]int{}
	for _, s := range subs {
		counts[s.PlanName]++
	}
	plans := make([]models.PlanCount, 0, len(counts))
	for name, n := range counts {
		plans = append(plans, models.PlanCount{PlanName: name, Count: n})
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].Count != plans[j].Count {
			return plans[i].Count > plans[j].Count
		}
		return plans[i].PlanName < plans[j].PlanName
	})

	recent := append([]models.Subscription(nil), subs...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].StartDate.After(recent[j].StartDate)
	})
	if len(recent) > RecentSubscriptions {
		recent = recent[:RecentSubscriptions]
	}

	all := subs
	if all == nil {
		all = []models.Subscription{}
	}
	return &models.SubscriptionsSummary{
		Stats:         SubscriptionStatsOf(subs),
		Plans:         plans,
		Recent:        recent,
		Subscriptions: all,
	}
}

func (a *Admin) SetSubscriptionStatus(ctx context.Context, id, status string) (*models.Subscription, error) {
	var from string
	s, err := a.store.UpdateSubscription(ctx, id, func(s *models.Subscription) error {
		if !ValidSubscriptionTransition(s.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s.Status, status)
		}
		from = s.Status
		s.Status = status
		if status == models.SubscriptionStatusCancelled {
			s.NextBilling = nil
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	a.notifier.Notify(ctx, notify.StatusChanged("Subscription", id, from, status))
	return s, nil
}

func (a *Admin) MenuItems(ctx context.Context) ([]models.MenuItem, error) {
	return a.menu.Items(ctx)
}

func (a *Admin) ToggleMenuAvailability(ctx context.Context, id string) (*models.MenuItem, error) {
	return a.menu.ToggleAvailability(ctx, id)
}

func (a *Admin) CateringRequests(ctx context.Context) ([]models.CateringRequest, error) {
	return CateringRequests(ctx, a.store)
}
