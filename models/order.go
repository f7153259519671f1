package models

import "time"

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order is a row of the admin orders table.
type Order struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	Total           float64   `json:"total"`
	Status          string    `json:"status"`
	Date            time.Time `json:"date"`
	Items           []string  `json:"items"`
	PaymentMethod   string    `json:"paymentMethod"`
	DeliveryAddress string    `json:"deliveryAddress"`
}

type CreateOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	Items           []CartItem
	ItemsTotal      float64
	DeliveryFee     float64
	PaymentMethod   string
	DeliveryAddress string
}

type CheckoutResult struct {
	Order   Order  `json:"order"`
	Message string `json:"message"`
}
