package models

import "time"

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type AccountPlan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MealsPerWeek int      `json:"mealsPerWeek"`
	Price        float64  `json:"price"`
	Status       string   `json:"status"` // "active", "paused", "cancelled"
	NextBilling  string   `json:"nextBilling"`
	StartDate    string   `json:"startDate"`
	Features     []string `json:"features"`
}

type DeliveryMeal struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type Delivery struct {
	ID             string         `json:"id"`
	Date           string         `json:"date"`
	Status         string         `json:"status"` // "scheduled", "pending", "in_transit", "delivered"
	Meals          []DeliveryMeal `json:"meals"`
	DeliveryWindow string         `json:"deliveryWindow"`
	TrackingNumber *string        `json:"trackingNumber"`
}

type PastOrder struct {
	ID     string   `json:"id"`
	Date   string   `json:"date"`
	Total  float64  `json:"total"`
	Status string   `json:"status"`
	Items  []string `json:"items"`
	Rating int      `json:"rating"`
	Review string   `json:"review"`
}

type CommunicationPreferences struct {
	Email             bool `json:"email"`
	SMS               bool `json:"sms"`
	PushNotifications bool `json:"pushNotifications"`
	MarketingEmails   bool `json:"marketingEmails"`
}

type Preferences struct {
	DietaryRestrictions      []string                 `json:"dietaryRestrictions"`
	Allergies                []string                 `json:"allergies"`
	Dislikes                 []string                 `json:"dislikes"`
	SpiceLevel               string                   `json:"spiceLevel"`
	CookingPreference        string                   `json:"cookingPreference"`
	DeliveryInstructions     string                   `json:"deliveryInstructions"`
	CommunicationPreferences CommunicationPreferences `json:"communicationPreferences"`
}

type PaymentMethod struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // "credit", "debit"
	Brand       string `json:"brand"`
	Last4       string `json:"last4"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	IsDefault   bool   `json:"isDefault"`
}

type NotificationSettings struct {
	OrderUpdates      bool `json:"orderUpdates"`
	DeliveryReminders bool `json:"deliveryReminders"`
	PromotionalOffers bool `json:"promotionalOffers"`
	WeeklyMenu        bool `json:"weeklyMenu"`
}

type PrivacySettings struct {
	ProfileVisibility   string `json:"profileVisibility"`
	ShareOrderHistory   bool   `json:"shareOrderHistory"`
	AllowDataCollection bool   `json:"allowDataCollection"`
}

type AccessibilitySettings struct {
	FontSize     string `json:"fontSize"`
	HighContrast bool   `json:"highContrast"`
	ScreenReader bool   `json:"screenReader"`
}

type AccountSettings struct {
	Notifications NotificationSettings  `json:"notifications"`
	Privacy       PrivacySettings       `json:"privacy"`
	Accessibility AccessibilitySettings `json:"accessibility"`
}

type Statistics struct {
	TotalOrders   int      `json:"totalOrders"`
	TotalSpent    float64  `json:"totalSpent"`
	AverageRating float64  `json:"averageRating"`
	FavoriteItems []string `json:"favoriteItems"`
}

// UserAccount mirrors user-account.json.
type UserAccount struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Avatar             string          `json:"avatar"`
	Phone              string          `json:"phone"`
	Address            Address         `json:"address"`
	MemberSince        string          `json:"memberSince"`
	SubscriptionPlan   AccountPlan     `json:"subscriptionPlan"`
	UpcomingDeliveries []Delivery      `json:"upcomingDeliveries"`
	PastOrders         []PastOrder     `json:"pastOrders"`
	Preferences        Preferences     `json:"preferences"`
	LoyaltyPoints      int             `json:"loyaltyPoints"`
	ReferralCode       string          `json:"referralCode"`
	PaymentMethods     []PaymentMethod `json:"paymentMethods"`
	AccountSettings    AccountSettings `json:"accountSettings"`
	Statistics         Statistics      `json:"statistics"`
}

// User is a row of the admin users table.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	JoinDate     time.Time `json:"joinDate"`
	LastLogin    time.Time `json:"lastLogin"`
	OrderCount   int       `json:"orderCount"`
	TotalSpent   float64   `json:"totalSpent"`
	Subscription *string   `json:"subscription"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
