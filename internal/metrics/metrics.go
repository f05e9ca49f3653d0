package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Settlement counters, reported by the health endpoint.
var (
	CollectionsApproved Counter
	CollectionsRejected Counter
	TokensAwarded       Counter
	OrdersPlaced        Counter
	OrdersCancelled     Counter
	PayoutsSucceeded    Counter
	PayoutsFailed       Counter
)

type Snapshot struct {
	CollectionsApproved uint64 `json:"collectionsApproved"`
	CollectionsRejected uint64 `json:"collectionsRejected"`
	TokensAwarded       uint64 `json:"tokensAwarded"`
	OrdersPlaced        uint64 `json:"ordersPlaced"`
	OrdersCancelled     uint64 `json:"ordersCancelled"`
	PayoutsSucceeded    uint64 `json:"payoutsSucceeded"`
	PayoutsFailed       uint64 `json:"payoutsFailed"`
}

func Read() Snapshot {
	return Snapshot{
		CollectionsApproved: CollectionsApproved.Load(),
		CollectionsRejected: CollectionsRejected.Load(),
		TokensAwarded:       TokensAwarded.Load(),
		OrdersPlaced:        OrdersPlaced.Load(),
		OrdersCancelled:     OrdersCancelled.Load(),
		PayoutsSucceeded:    PayoutsSucceeded.Load(),
		PayoutsFailed:       PayoutsFailed.Load(),
	}
}
