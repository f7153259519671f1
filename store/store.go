// Package store holds the mutable storefront state behind one interface with
// an in-memory and a PostgreSQL implementation.
package store

import (
	"context"
	"errors"
	"time"

	"food-storefront/models"
)

var ErrNotFound = errors.New("not found")

// Store is safe for concurrent use. Update* methods run fn against the
// current value and persist the result atomically; when fn returns an error
// nothing is written and that error is returned unchanged.
type Store interface {
	GetVisitor(ctx context.Context, visitorID string) (*models.VisitorState, error)
	UpdateVisitor(ctx context.Context, visitorID string, fn func(*models.VisitorState) error) (*models.VisitorState, error)

	MenuAvailability(ctx context.Context) (map[string]bool, error)
	SetMenuAvailability(ctx context.Context, itemID string, available bool) error
	// ToggleMenuAvailability flips an item's availability, starting from
	// fallback when no override is stored, and returns the new value.
	ToggleMenuAvailability(ctx context.Context, itemID string, fallback bool) (bool, error)

	GetAccount(ctx context.Context, userID string) (*models.UserAccount, error)
	PutAccount(ctx context.Context, account *models.UserAccount) error
	UpdateAccount(ctx context.Context, userID string, fn func(*models.UserAccount) error) (*models.UserAccount, error)

	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error)

	ListOrders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, o models.Order) error
	UpdateOrder(ctx context.Context, id string, fn func(*models.Order) error) (*models.Order, error)

	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	CreateSubscription(ctx context.Context, s models.Subscription) error
	UpdateSubscription(ctx context.Context, id string, fn func(*models.Subscription) error) (*models.Subscription, error)

	ListCateringRequests(ctx context.Context) ([]models.CateringRequest, error)
	CreateCateringRequest(ctx context.Context, r models.CateringRequest) error

	Close()
}

// Seed is the initial data loaded from the fixtures.
type Seed struct {
	Account   *models.UserAccount
	Dashboard *models.AdminDashboard
}
