package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleCart() []LineItem {
	return []LineItem{
		{ProductID: "p-1", Name: "Recycled Tote", Price: 299, TokenPrice: 50, Quantity: 2},
	}
}

func TestMaxRedeemableTokens(t *testing.T) {
	assert.Equal(t, int64(300), MaxRedeemableTokens(500, 300))
	assert.Equal(t, int64(500), MaxRedeemableTokens(500, 700))
	assert.Equal(t, int64(0), MaxRedeemableTokens(500, -10))
	assert.Equal(t, int64(0), MaxRedeemableTokens(-1, 100))
}

func TestTokenValueInCurrency(t *testing.T) {
	e := NewEconomy(Config{TokenValueINR: 0.5, GSTRate: 0.18})

	assert.Equal(t, 25.0, e.TokenValueInCurrency(50))
	assert.Equal(t, 0.0, e.TokenValueInCurrency(0))
	assert.Equal(t, 0.0, e.TokenValueInCurrency(-5))
}

func TestCartTokenTotal(t *testing.T) {
	items := []LineItem{
		{TokenPrice: 50, Quantity: 2},
		{TokenPrice: 10, Quantity: 3},
		{TokenPrice: 99, Quantity: 0},
	}
	assert.Equal(t, int64(130), CartTokenTotal(items))
}

func TestComputeOrderSummary(t *testing.T) {
	e := DefaultEconomy()

	t.Run("EndToEnd", func(t *testing.T) {
		s := e.ComputeOrderSummary(sampleCart(), 50)

		assert.Equal(t, 598.0, s.Subtotal)
		assert.LessOrEqual(t, s.TokenDiscount, e.TokenValueInCurrency(50))
		assert.Equal(t, 50.0, s.TokenDiscount)
		assert.InDelta(t, 98.64, s.Tax, 0.001)
		assert.Equal(t, DefaultShippingFlatFee, s.ShippingCost)
		assert.InDelta(t, s.Subtotal-s.TokenDiscount+s.Tax+s.ShippingCost, s.Total, 0.001)
		assert.InDelta(t, 686.64, s.Total, 0.001)
		assert.Equal(t, int64(50), s.TokensUsed)
	})

	t.Run("NoTokens", func(t *testing.T) {
		s := e.ComputeOrderSummary(sampleCart(), 0)
		assert.Equal(t, 0.0, s.TokenDiscount)
		assert.InDelta(t, 107.64, s.Tax, 0.001)
	})

	t.Run("DiscountClampedAtSubtotal", func(t *testing.T) {
		items := []LineItem{{Price: 20, TokenPrice: 100, Quantity: 1}}
		s := e.ComputeOrderSummary(items, 100)

		assert.Equal(t, 20.0, s.TokenDiscount)
		assert.Equal(t, 0.0, s.Tax)
		assert.Equal(t, int64(20), s.TokensUsed)
		assert.GreaterOrEqual(t, s.Total, 0.0)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		s := e.ComputeOrderSummary(nil, 10)
		assert.Equal(t, 0.0, s.Total)
		assert.Equal(t, 0.0, s.ShippingCost)
	})

	t.Run("FreeShippingThreshold", func(t *testing.T) {
		free := NewEconomy(Config{GSTRate: 0.18, ShippingFlatFee: 40, FreeShippingThreshold: 500})
		s := free.ComputeOrderSummary(sampleCart(), 0)
		assert.Equal(t, 0.0, s.ShippingCost)
	})
}

func TestComputeOrderSummary_TotalNeverNegative(t *testing.T) {
	e := NewEconomy(Config{TokenValueINR: 3, GSTRate: 0.18, ShippingFlatFee: 40})
	carts := [][]LineItem{
		sampleCart(),
		{{Price: 1, TokenPrice: 500, Quantity: 1}},
		{{Price: 15.5, TokenPrice: 5, Quantity: 3}, {Price: 0.99, TokenPrice: 1, Quantity: 10}},
	}

	for _, items := range carts {
		maxTokens := MaxRedeemableTokens(CartTokenTotal(items), 10_000)
		for tok := int64(0); tok <= maxTokens; tok++ {
			s := e.ComputeOrderSummary(items, tok)
			assert.GreaterOrEqual(t, s.Total, 0.0)
			assert.LessOrEqual(t, s.TokenDiscount, s.Subtotal)
		}
	}
}

func TestQuote(t *testing.T) {
	e := DefaultEconomy()

	t.Run("WithinLimits", func(t *testing.T) {
		q := e.Quote(sampleCart(), 50, 100)
		assert.False(t, q.Clamped)
		assert.Equal(t, int64(100), q.MaxRedeemable)
		assert.Equal(t, int64(50), q.TokensUsed)
	})

	t.Run("ClampedToBalance", func(t *testing.T) {
		q := e.Quote(sampleCart(), 80, 30)
		assert.True(t, q.Clamped)
		assert.Equal(t, int64(30), q.MaxRedeemable)
		assert.Equal(t, int64(30), q.TokensUsed)
		assert.Equal(t, int64(80), q.RequestedTokens)
	})

	t.Run("ClampedToCart", func(t *testing.T) {
		q := e.Quote(sampleCart(), 500, 1000)
		assert.True(t, q.Clamped)
		assert.Equal(t, int64(100), q.TokensUsed)
	})
}
