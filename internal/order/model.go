package order

import (
	"time"

	"ecochain-be/internal/tokens"
)

type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "cod"
	PaymentUPI        PaymentMethod = "upi"
	PaymentCard       PaymentMethod = "card"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentWallet     PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentUPI, PaymentCard, PaymentNetBanking, PaymentWallet:
		return true
	}
	return false
}

type ShippingAddress struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

type Item struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	TokenPrice int64   `json:"tokenPrice"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}

type Billing struct {
	Subtotal         float64 `json:"subtotal"`
	EcoTokensApplied int64   `json:"ecoTokensApplied"`
	EcoTokenValue    float64 `json:"ecoTokenValue"`
	Taxes            float64 `json:"taxes"`
	ShippingCharges  float64 `json:"shippingCharges"`
	Discount         float64 `json:"discount"`
	FinalAmount      float64 `json:"finalAmount"`
}

func billingFrom(s tokens.Summary) Billing {
	return Billing{
		Subtotal:         s.Subtotal,
		EcoTokensApplied: s.TokensUsed,
		EcoTokenValue:    s.TokenDiscount,
		Taxes:            s.Tax,
		ShippingCharges:  s.ShippingCost,
		Discount:         s.Discount,
		FinalAmount:      s.Total,
	}
}

type TimelineEntry struct {
	Status  Status    `json:"status"`
	Note    string    `json:"note,omitempty"`
	ActorID uint      `json:"actorId"`
	At      time.Time `json:"at"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          uint            `json:"userId"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Billing         Billing         `json:"billing"`
	Status          Status          `json:"status"`
	Timeline        []TimelineEntry `json:"timeline"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// RequestedItem lets a buyer check out specific products instead of the cart.
type RequestedItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type PlaceOrderInput struct {
	Items           []RequestedItem `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	TokenAmount     int64           `json:"tokenAmount"`
}

type QuoteInput struct {
	Items       []RequestedItem `json:"items"`
	TokenAmount int64           `json:"tokenAmount"`
}

type ListOptions struct {
	UserID *uint
	Status Status
	Limit  int
	Offset int
}

// StatusChange is the result of a committed transition.
type StatusChange struct {
	OrderID        string `json:"orderId"`
	UserID         uint   `json:"userId"`
	From           Status `json:"from"`
	To             Status `json:"to"`
	TokensRefunded int64  `json:"tokensRefunded"`
}
