// Package tokens converts EcoTokens to rupees and builds the checkout
// billing breakdown. Checkout quotes and order placement both use it.
package tokens

import "math"

const (
	DefaultTokenValueINR   = 1.0
	DefaultGSTRate         = 0.18
	DefaultShippingFlatFee = 40.0
)

type LineItem struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	TokenPrice int64   `json:"tokenPrice"`
	Quantity   int     `json:"quantity"`
}

type Summary struct {
	Subtotal      float64 `json:"subtotal"`
	TokenDiscount float64 `json:"tokenDiscount"`
	Discount      float64 `json:"discount"`
	ShippingCost  float64 `json:"shippingCost"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
	TokensUsed    int64   `json:"tokensUsed"`
}

type Quote struct {
	Summary
	RequestedTokens int64 `json:"requestedTokens"`
	MaxRedeemable   int64 `json:"maxRedeemable"`
	Clamped         bool  `json:"clamped"`
}

type Config struct {
	TokenValueINR         float64
	GSTRate               float64
	ShippingFlatFee       float64
	FreeShippingThreshold float64
}

type Economy struct {
	cfg Config
}

func NewEconomy(cfg Config) *Economy {
	if cfg.TokenValueINR <= 0 {
		cfg.TokenValueINR = DefaultTokenValueINR
	}
	if cfg.GSTRate < 0 {
		cfg.GSTRate = DefaultGSTRate
	}
	if cfg.ShippingFlatFee < 0 {
		cfg.ShippingFlatFee = 0
	}
	return &Economy{cfg: cfg}
}

func DefaultEconomy() *Economy {
	return NewEconomy(Config{
		TokenValueINR:   DefaultTokenValueINR,
		GSTRate:         DefaultGSTRate,
		ShippingFlatFee: DefaultShippingFlatFee,
	})
}

func (e *Economy) Config() Config { return e.cfg }

func (e *Economy) TokenValueInCurrency(tokens int64) float64 {
	if tokens <= 0 {
		return 0
	}
	return round2(float64(tokens) * e.cfg.TokenValueINR)
}

// MaxRedeemableTokens caps a spend at what the user holds and what the cart accepts.
func MaxRedeemableTokens(cartTokenTotal, userBalance int64) int64 {
	if cartTokenTotal < 0 {
		cartTokenTotal = 0
	}
	if userBalance < 0 {
		userBalance = 0
	}
	return min(cartTokenTotal, userBalance)
}

func CartTokenTotal(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		if it.Quantity <= 0 || it.TokenPrice <= 0 {
			continue
		}
		total += it.TokenPrice * int64(it.Quantity)
	}
	return total
}

func Subtotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		if it.Quantity <= 0 || it.Price <= 0 {
			continue
		}
		sum += it.Price * float64(it.Quantity)
	}
	return round2(sum)
}

func (e *Economy) Shipping(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	if e.cfg.FreeShippingThreshold > 0 && subtotal >= e.cfg.FreeShippingThreshold {
		return 0
	}
	return round2(e.cfg.ShippingFlatFee)
}

// ComputeOrderSummary never returns a negative total: the token discount is
// clamped at the subtotal, and a clamped discount only consumes the tokens it
// actually needs.
func (e *Economy) ComputeOrderSummary(items []LineItem, tokensToApply int64) Summary {
	if tokensToApply < 0 {
		tokensToApply = 0
	}

	subtotal := Subtotal(items)
	tokenDiscount := e.TokenValueInCurrency(tokensToApply)
	tokensUsed := tokensToApply

	if tokenDiscount > subtotal {
		tokenDiscount = subtotal
		tokensUsed = int64(math.Ceil(subtotal / e.cfg.TokenValueINR))
	}

	taxable := math.Max(subtotal-tokenDiscount, 0)
	tax := round2(taxable * e.cfg.GSTRate)
	shipping := e.Shipping(subtotal)
	total := round2(math.Max(subtotal-tokenDiscount+tax+shipping, 0))

	return Summary{
		Subtotal:      subtotal,
		TokenDiscount: tokenDiscount,
		ShippingCost:  shipping,
		Tax:           tax,
		Total:         total,
		TokensUsed:    tokensUsed,
	}
}

// Quote clamps the requested spend to what is redeemable and flags the clamp
// so the caller can warn instead of failing.
func (e *Economy) Quote(items []LineItem, requested, balance int64) Quote {
	maxTokens := MaxRedeemableTokens(CartTokenTotal(items), balance)
	apply := requested
	clamped := false
	if apply < 0 {
		apply = 0
		clamped = true
	}
	if apply > maxTokens {
		apply = maxTokens
		clamped = true
	}

	return Quote{
		Summary:         e.ComputeOrderSummary(items, apply),
		RequestedTokens: requested,
		MaxRedeemable:   maxTokens,
		Clamped:         clamped,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
