package models

type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Category    string   `json:"category"` // "appetizer", "main", "dessert", "drink", "side"
	IsSpecial   bool     `json:"isSpecial"`
	SpiceLevel  string   `json:"spiceLevel"` // "none", "mild", "medium", "hot"
	Dietary     []string `json:"dietary"`
	Available   bool     `json:"available"`
}

const (
	CategoryAppetizer = "appetizer"
	CategoryMain      = "main"
	CategoryDessert   = "dessert"
	CategoryDrink     = "drink"
	CategorySide      = "side"
)

type DailyMenu struct {
	Date  string     `json:"date"`
	Items []MenuItem `json:"items"`
}

type HowItWorksStep struct {
	StepNumber  int    `json:"stepNumber"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Icon        string `json:"icon"`
}

type HowItWorks struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Steps    []HowItWorksStep `json:"steps"`
}
