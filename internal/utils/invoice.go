package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber returns a human-facing order reference, e.g.
// ECO-20261017-103000-123-4567.
func GenerateOrderNumber() string {
	return generateReference("ECO")
}

// GeneratePayoutReference is the reference sent with collector transfers.
func GeneratePayoutReference() string {
	return generateReference("PAY")
}

func generateReference(prefix string) string {
	now := time.Now().UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("%s-%s-%03d-%04d", prefix, datePart, millis, n.Int64())
}
