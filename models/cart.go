package models

type CartItem struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Image      string  `json:"image,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// CartSummary is the cart plus the figures the storefront displays next to it.
type CartSummary struct {
	Items       []CartItem `json:"items"`
	ItemCount   int        `json:"itemCount"`
	Total       float64    `json:"total"`
	DeliveryFee float64    `json:"deliveryFee"`
	FinalTotal  float64    `json:"finalTotal"`
}
