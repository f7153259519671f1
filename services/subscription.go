package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-storefront/metrics"
	"food-storefront/mock"
	"food-storefront/models"
	"food-storefront/notify"
	"food-storefront/store"

	"github.com/google/uuid"
)

const billingPeriod = 7 * 24 * time.Hour

var (
	ErrPlanNotFound       = errors.New("subscription plan not found")
	ErrNoPlanSelected     = &PublicError{Msg: "Please select a subscription plan first"}
	ErrCustomPlanCheckout = &PublicError{Msg: "Custom plans are quoted by our team; please contact us"}
)

// Subscriptions manages the meal-prep plan catalogue and each visitor's
// selected plan.
type Subscriptions struct {
	store    store.Store
	plans    []models.SubscriptionPlan
	notifier notify.Notifier
	now      func() time.Time
}

func NewSubscriptions(st store.Store, n notify.Notifier) (*Subscriptions, error) {
	plans, err := mock.LoadSubscriptionPlans()
	if err != nil {
		return nil, err
	}
	if n == nil {
		n = notify.Nop{}
	}
	return &Subscriptions{store: st, plans: plans, notifier: n, now: time.Now}, nil
}

func (s *Subscriptions) Plans() []models.SubscriptionPlan {
	return append([]models.SubscriptionPlan(nil), s.plans...)
}

func (s *Subscriptions) Plan(id string) (*models.SubscriptionPlan, error) {
	for i := range s.plans {
		if s.plans[i].ID == id {
			p := s.plans[i]
			return &p, nil
		}
	}
	return nil, ErrPlanNotFound
}

// Selection returns the visitor's selected plan, or nil when none is chosen.
func (s *Subscriptions) Selection(ctx context.Context, visitorID string) (*models.SubscriptionPlan, error) {
	v, err := s.store.GetVisitor(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if v.SelectedPlanID == "" {
		return nil, nil
	}
	p, err := s.Plan(v.SelectedPlanID)
	if errors.Is(err, ErrPlanNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *Subscriptions) SelectPlan(ctx context.Context, visitorID, planID string) (*models.SubscriptionPlan, error) {
	p, err := s.Plan(planID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		v.SelectedPlanID = p.ID
		return nil
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Subscriptions) ClearSelection(ctx context.Context, visitorID string) error {
	_, err := s.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		v.SelectedPlanID = ""
		return nil
	})
	return err
}

// ProceedToCheckout confirms the selected plan. Logged-in visitors get an
// active subscription on the admin dashboard; account may be nil. The
// selection survives a failed checkout.
func (s *Subscriptions) ProceedToCheckout(ctx context.Context, visitorID string, account *models.UserAccount) (*models.SubscriptionCheckoutResult, error) {
	var plan *models.SubscriptionPlan
	_, err := s.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		if v.SelectedPlanID == "" {
			return ErrNoPlanSelected
		}
		p, err := s.Plan(v.SelectedPlanID)
		if err != nil {
			return ErrNoPlanSelected
		}
		if !p.Price.IsNumber() {
			return ErrCustomPlanCheckout
		}
		plan = p
		v.SelectedPlanID = ""
		return nil
	})
	if err != nil {
		metrics.RecordCheckout("subscription", false)
		return nil, err
	}

	result := &models.SubscriptionCheckoutResult{
		Plan:    *plan,
		Message: fmt.Sprintf("Checkout would proceed with %s - $%s/week", plan.PlanName, plan.Price.String()),
	}
	if account != nil {
		now := s.now().UTC()
		next := now.Add(billingPeriod)
		sub := models.Subscription{
			ID:            "sub-" + uuid.NewString(),
			PlanName:      plan.PlanName,
			CustomerName:  account.Name,
			CustomerEmail: account.Email,
			Status:        models.SubscriptionStatusActive,
			StartDate:     now,
			NextBilling:   &next,
			Price:         plan.Price.Value,
		}
		if plan.MealsPerWeek.IsNumber() {
			sub.MealsPerWeek = int(plan.MealsPerWeek.Value)
		}
		if err := s.store.CreateSubscription(ctx, sub); err != nil {
			metrics.RecordCheckout("subscription", false)
			return nil, fmt.Errorf("record subscription: %w", err)
		}
		result.Subscription = &sub
		s.notifier.Notify(ctx, notify.SubscriptionStarted(sub))
	}
	metrics.RecordCheckout("subscription", true)
	return result, nil
}

// restoreSelection re-selects planID unless the visitor picked another plan
// while the checkout was running.
func (s *Subscriptions) restoreSelection(ctx context.Context, visitorID, planID string) error {
	_, err := s.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		if v.SelectedPlanID == "" {
			v.SelectedPlanID = planID
		}
		return nil
	})
	return err
}
