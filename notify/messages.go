package notify

import (
	"fmt"
	"strings"

	"food-storefront/models"
)

// OrderPlaced is the admin notice for a storefront cart checkout.
func OrderPlaced(o models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 New order %s\n\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	if o.CustomerEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", o.CustomerEmail)
	}
	for _, item := range o.Items {
		fmt.Fprintf(&b, "• %s\n", item)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f", o.Total)
	return b.String()
}

func SubscriptionStarted(s models.Subscription) string {
	return fmt.Sprintf("📦 New subscription %s\n\nPlan: %s (%d meals/week)\nCustomer: %s\nPrice: $%.2f/week",
		s.ID, s.PlanName, s.MealsPerWeek, s.CustomerName, s.Price)
}

// CateringRequested summarises a submitted catering wizard.
func CateringRequested(r models.CateringRequest) string {
	f := r.FormData
	var b strings.Builder
	fmt.Fprintf(&b, "🍽 Catering request %s\n\n", r.ID)
	fmt.Fprintf(&b, "%s on %s for %d guests\n", f.EventType, f.Date, f.GuestCount)
	fmt.Fprintf(&b, "Venue: %s\n", f.Venue)
	fmt.Fprintf(&b, "Contact: %s, %s, %s\n", f.ContactName, f.ContactEmail, f.ContactPhone)
	if len(f.MenuItems) > 0 {
		fmt.Fprintf(&b, "Menu: %s\n", strings.Join(f.MenuItems, ", "))
	}
	if f.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s", f.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

func StatusChanged(kind, id, from, to string) string {
	return fmt.Sprintf("🔄 %s %s: %s → %s", kind, id, from, to)
}
