package product

import "time"

const (
	StatusActive  = "active"
	StatusDisable = "disable"
)

// Product is a recycled-content item a factory lists in the marketplace.
// TokenPrice is the most EcoTokens one unit accepts as payment.
type Product struct {
	ID          string    `json:"id"`
	FactoryID   uint      `json:"factoryId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Material    string    `json:"material"`
	Price       float64   `json:"price"`
	TokenPrice  int64     `json:"tokenPrice"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ListOptions struct {
	FactoryID  *uint
	Search     string
	OnlyActive bool
	Limit      int
	Offset     int
}

type NewProductInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	Material    string  `json:"material" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	TokenPrice  int64   `json:"tokenPrice" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    *string `json:"imageUrl"`
}
