package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-storefront/metrics"
	"food-storefront/models"
	"food-storefront/notify"
	"food-storefront/store"

	"github.com/google/uuid"
)

const (
	MaxLineQuantity    = 99
	DefaultDeliveryFee = 5.00
	GuestCustomerName  = "Guest"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrNotInCart       = errors.New("item is not in the cart")
)

// Cart owns the per-visitor shopping cart.
type Cart struct {
	store       store.Store
	menu        *Menu
	notifier    notify.Notifier
	deliveryFee float64
	now         func() time.Time
}

func NewCart(st store.Store, menu *Menu, n notify.Notifier, deliveryFee float64) *Cart {
	if n == nil {
		n = notify.Nop{}
	}
	return &Cart{store: st, menu: menu, notifier: n, deliveryFee: deliveryFee, now: time.Now}
}

// Summarize derives the displayed totals from cart lines.
func Summarize(items []models.CartItem, deliveryFee float64) models.CartSummary {
	s := models.CartSummary{Items: items}
	if s.Items == nil {
		s.Items = []models.CartItem{}
	}
	var total float64
	for _, it := range items {
		s.ItemCount += it.Quantity
		total += it.Price * float64(it.Quantity)
	}
	s.Total = roundCents(total)
	if len(items) > 0 {
		s.DeliveryFee = roundCents(deliveryFee)
	}
	s.FinalTotal = roundCents(s.Total + s.DeliveryFee)
	return s
}

func (c *Cart) Get(ctx context.Context, visitorID string) (models.CartSummary, error) {
	v, err := c.store.GetVisitor(ctx, visitorID)
	if err != nil {
		return models.CartSummary{}, fmt.Errorf("load cart: %w", err)
	}
	return Summarize(v.Cart.Items, c.deliveryFee), nil
}

// AddItem adds qty of a menu item (1 when qty <= 0), merging with an existing line.
func (c *Cart) AddItem(ctx context.Context, visitorID, itemID string, qty int) (models.CartSummary, error) {
	if qty <= 0 {
		qty = 1
	}
	item, err := c.menu.GetItem(ctx, itemID)
	if err != nil {
		return models.CartSummary{}, err
	}
	if !item.Available {
		return models.CartSummary{}, ErrItemUnavailable
	}
	v, err := c.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		for i := range v.Cart.Items {
			if v.Cart.Items[i].MenuItemID == itemID {
				v.Cart.Items[i].Quantity = min(v.Cart.Items[i].Quantity+qty, MaxLineQuantity)
				return nil
			}
		}
		v.Cart.Items = append(v.Cart.Items, models.CartItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   min(qty, MaxLineQuantity),
			Image:      item.Image,
		})
		return nil
	})
	if err != nil {
		return models.CartSummary{}, err
	}
	return Summarize(v.Cart.Items, c.deliveryFee), nil
}

// UpdateQuantity sets a line's quantity; qty <= 0 removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, visitorID, itemID string, qty int) (models.CartSummary, error) {
	v, err := c.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		for i := range v.Cart.Items {
			if v.Cart.Items[i].MenuItemID != itemID {
				continue
			}
			if qty <= 0 {
				v.Cart.Items = append(v.Cart.Items[:i], v.Cart.Items[i+1:]...)
				return nil
			}
			v.Cart.Items[i].Quantity = min(qty, MaxLineQuantity)
			return nil
		}
		return ErrNotInCart
	})
	if err != nil {
		return models.CartSummary{}, err
	}
	return Summarize(v.Cart.Items, c.deliveryFee), nil
}

func (c *Cart) RemoveItem(ctx context.Context, visitorID, itemID string) (models.CartSummary, error) {
	v, err := c.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		kept := v.Cart.Items[:0]
		for _, it := range v.Cart.Items {
			if it.MenuItemID != itemID {
				kept = append(kept, it)
			}
		}
		v.Cart.Items = kept
		return nil
	})
	if err != nil {
		return models.CartSummary{}, err
	}
	return Summarize(v.Cart.Items, c.deliveryFee), nil
}

func (c *Cart) Clear(ctx context.Context, visitorID string) (models.CartSummary, error) {
	v, err := c.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		v.Cart.Items = []models.CartItem{}
		return nil
	})
	if err != nil {
		return models.CartSummary{}, err
	}
	return Summarize(v.Cart.Items, c.deliveryFee), nil
}

// Checkout records a pending order for the admin dashboard and empties the
// cart. No payment is taken. account may be nil for anonymous visitors.
// The cart is taken in one update so concurrent checkouts cannot both order
// it; if the order cannot be stored the lines are put back.
func (c *Cart) Checkout(ctx context.Context, visitorID string, account *models.UserAccount) (*models.CheckoutResult, error) {
	var summary models.CartSummary
	_, err := c.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		if len(v.Cart.Items) == 0 {
			return ErrEmptyCart
		}
		summary = Summarize(v.Cart.Items, c.deliveryFee)
		v.Cart.Items = []models.CartItem{}
		return nil
	})
	if err != nil {
		metrics.RecordCheckout("cart", false)
		return nil, err
	}

	order := NewOrder(models.CreateOrderInput{
		CustomerName:  GuestCustomerName,
		Items:         summary.Items,
		ItemsTotal:    summary.Total,
		DeliveryFee:   summary.DeliveryFee,
		PaymentMethod: "Pay on delivery",
	}, c.now())
	if account != nil {
		order.CustomerName = account.Name
		order.CustomerEmail = account.Email
		order.DeliveryAddress = formatAddress(account.Address)
		if pm := defaultPaymentMethod(account.PaymentMethods); pm != nil {
			order.PaymentMethod = fmt.Sprintf("%s •••• %s", pm.Brand, pm.Last4)
		}
	}
	if err := c.store.CreateOrder(ctx, order); err != nil {
		metrics.RecordCheckout("cart", false)
		if rerr := c.restore(ctx, visitorID, summary.Items); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore cart: %w", rerr))
		}
		return nil, fmt.Errorf("record order: %w", err)
	}
	metrics.RecordCheckout("cart", true)
	c.notifier.Notify(ctx, notify.OrderPlaced(order))

	return &models.CheckoutResult{
		Order:   order,
		Message: fmt.Sprintf("Checkout functionality coming soon! Total: $%.2f", summary.FinalTotal),
	}, nil
}

// restore puts lines taken by a failed checkout back, merging them with
// anything added in the meantime.
func (c *Cart) restore(ctx context.Context, visitorID string, items []models.CartItem) error {
	_, err := c.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		merged := append([]models.CartItem(nil), items...)
	next:
		for _, cur := range v.Cart.Items {
			for i := range merged {
				if merged[i].MenuItemID == cur.MenuItemID {
					merged[i].Quantity = min(merged[i].Quantity+cur.Quantity, MaxLineQuantity)
					continue next
				}
			}
			merged = append(merged, cur)
		}
		v.Cart.Items = merged
		return nil
	})
	return err
}

// NewOrder builds a pending admin order from cart lines.
func NewOrder(in models.CreateOrderInput, now time.Time) models.Order {
	items := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity > 1 {
			items = append(items, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
		} else {
			items = append(items, it.Name)
		}
	}
	return models.Order{
		ID:              "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		Total:           roundCents(in.ItemsTotal + in.DeliveryFee),
		Status:          models.OrderStatusPending,
		Date:            now.UTC(),
		Items:           items,
		PaymentMethod:   in.PaymentMethod,
		DeliveryAddress: in.DeliveryAddress,
	}
}

func formatAddress(a models.Address) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City, strings.TrimSpace(a.State + " " + a.ZipCode)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func defaultPaymentMethod(pms []models.PaymentMethod) *models.PaymentMethod {
	for i := range pms {
		if pms[i].IsDefault {
			return &pms[i]
		}
	}
	return nil
}
