package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPaused    = "paused"
	SubscriptionStatusCancelled = "cancelled"

	PlanCategoryCustom = "custom"
)

// FlexNumber holds a fixture value that is either a JSON number or a display
// string such as "Custom" or "Flexible". Label is set only for strings.
type FlexNumber struct {
	Value float64
	Label string
}

func (f FlexNumber) IsNumber() bool { return f.Label == "" }

func (f FlexNumber) String() string {
	if f.Label != "" {
		return f.Label
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if f.Label != "" {
		return json.Marshal(f.Label)
	}
	return json.Marshal(f.Value)
}

func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = FlexNumber{Value: v}
			return nil
		}
		*f = FlexNumber{Label: s}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("flex number: %w", err)
	}
	*f = FlexNumber{Value: v}
	return nil
}

type SubscriptionPlan struct {
	ID            string     `json:"id"`
	PlanName      string     `json:"planName"`
	MealsPerWeek  FlexNumber `json:"mealsPerWeek"`
	Price         FlexNumber `json:"price"`
	OriginalPrice *float64   `json:"originalPrice,omitempty"`
	Description   string     `json:"description"`
	Features      []string   `json:"features"`
	IsPopular     bool       `json:"isPopular"`
	Discount      *string    `json:"discount,omitempty"`
	ServingSize   string     `json:"servingSize"`
	Category      string     `json:"category"`
}

type SubscriptionCatalog struct {
	Plans []SubscriptionPlan `json:"plans"`
}

// Subscription is a row of the admin subscriptions table.
type Subscription struct {
	ID            string     `json:"id"`
	PlanName      string     `json:"planName"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	Status        string     `json:"status"`
	StartDate     time.Time  `json:"startDate"`
	NextBilling   *time.Time `json:"nextBilling"`
	Price         float64    `json:"price"`
	MealsPerWeek  int        `json:"mealsPerWeek"`
}

type SubscriptionCheckoutResult struct {
	Plan         SubscriptionPlan `json:"plan"`
	Subscription *Subscription    `json:"subscription,omitempty"`
	Message      string           `json:"message"`
}
