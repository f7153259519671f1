package models

// AdminDashboard mirrors admin-dashboard.json.
type AdminDashboard struct {
	Users         []User         `json:"users"`
	Orders        []Order        `json:"orders"`
	Subscriptions []Subscription `json:"subscriptions"`
}

type SubscriptionStats struct {
	TotalSubscriptions     int     `json:"totalSubscriptions"`
	ActiveSubscriptions    int     `json:"activeSubscriptions"`
	PausedSubscriptions    int     `json:"pausedSubscriptions"`
	CancelledSubscriptions int     `json:"cancelledSubscriptions"`
	MonthlyRevenue         float64 `json:"monthlyRevenue"`
}

type PlanCount struct {
	PlanName string `json:"planName"`
	Count    int    `json:"count"`
}

type SubscriptionsSummary struct {
	Stats         SubscriptionStats `json:"stats"`
	Plans         []PlanCount       `json:"plans"`
	Recent        []Subscription    `json:"recent"`
	Subscriptions []Subscription    `json:"subscriptions"`
}

type Overview struct {
	TotalUsers       int               `json:"totalUsers"`
	ActiveUsers      int               `json:"activeUsers"`
	TotalOrders      int               `json:"totalOrders"`
	PendingOrders    int               `json:"pendingOrders"`
	Revenue          float64           `json:"revenue"`
	CateringRequests int               `json:"cateringRequests"`
	Subscriptions    SubscriptionStats `json:"subscriptions"`
}

// Page is one slice of a filtered, sorted table.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}
