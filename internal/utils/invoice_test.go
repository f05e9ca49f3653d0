package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		ref := GenerateOrderNumber()

		parts := strings.Split(ref, "-")
		if assert.Len(t, parts, 5) {
			assert.Equal(t, "ECO", parts[0])
			assert.Len(t, parts[1], 8, "date part YYYYMMDD")
			assert.Len(t, parts[2], 6, "time part HHMMSS")
			assert.Len(t, parts[3], 3, "milliseconds")
			assert.Len(t, parts[4], 4, "random suffix")
		}
	})

	t.Run("PayoutPrefix", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(GeneratePayoutReference(), "PAY-"))
	})
}
