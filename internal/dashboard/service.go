// Package dashboard serves the per-role summary screens. Aggregates are
// loaded concurrently and cached for a short TTL; any published realtime
// event purges the cache.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/collection"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/order"
	"ecochain-be/internal/utils"
	"ecochain-be/internal/valuation"
	"ecochain-be/internal/wallet"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const cacheSize = 512

var ErrUserNotAuthenticated = errors.New("user not authenticated")

type Service interface {
	Admin(ctx context.Context) (*AdminStats, error)
	Collector(ctx context.Context) (*CollectorStats, error)
	User(ctx context.Context) (*UserStats, error)
	Invalidate()
}

type service struct {
	repo        Repository
	collections collection.Repository
	orders      order.Repository
	wallets     wallet.Repository
	cache       *expirable.LRU[string, any]
}

func NewService(
	repo Repository,
	collections collection.Repository,
	orders order.Repository,
	wallets wallet.Repository,
	ttl time.Duration,
) Service {
	return &service{
		repo:        repo,
		collections: collections,
		orders:      orders,
		wallets:     wallets,
		cache:       expirable.NewLRU[string, any](cacheSize, nil, ttl),
	}
}

func (s *service) Invalidate() {
	s.cache.Purge()
}

func cached[T any](s *service, key string, load func() (*T, error)) (*T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(*T); ok {
			return t, nil
		}
	}
	t, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, t)
	return t, nil
}

// sumPayments values submissions with the same function used at settlement.
func sumPayments(subs []*collection.Submission) int64 {
	var total int64
	for _, sub := range subs {
		total += valuation.ComputePayment(sub.Category, sub.WeightKg, sub.Quality)
	}
	return total
}

func (s *service) Admin(ctx context.Context) (*AdminStats, error) {
	if !utils.IsAdmin(ctx) {
		return nil, apperr.Forbidden("admin role required")
	}

	return cached(s, "admin", func() (*AdminStats, error) {
		log := logger.FromCtx(ctx).With(zap.String("method", "Dashboard.Admin"))
		stats := &AdminStats{OrdersByStatus: map[string]int64{}}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			pending, err := s.collections.List(gctx, collection.Filter{Status: collection.StatusCollected})
			if err != nil {
				return fmt.Errorf("pending collections: %w", err)
			}
			stats.PendingPayments = int64(len(pending))
			stats.PendingPaymentAmount = sumPayments(pending)
			return nil
		})

		g.Go(func() error {
			counts, err := s.repo.CollectionCounts(gctx, nil)
			if err != nil {
				return fmt.Errorf("collection counts: %w", err)
			}
			stats.CompletedCollections = counts[string(collection.StatusCompleted)]
			stats.RejectedCollections = counts[string(collection.StatusRejected)]
			return nil
		})

		g.Go(func() error {
			totals, err := s.repo.PaymentTotals(gctx, nil)
			if err != nil {
				return fmt.Errorf("payment totals: %w", err)
			}
			stats.TotalPaidOut = totals.PaidOut
			stats.TotalTokensAwarded = totals.TokensAwarded
			stats.FailedPayouts = totals.Failed
			return nil
		})

		var orderCounts map[order.Status]int64
		g.Go(func() error {
			var err error
			orderCounts, err = s.orders.CountByStatus(gctx, nil)
			if err != nil {
				return fmt.Errorf("order counts: %w", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			log.Error("failed to load admin dashboard", zap.Error(err))
			return nil, err
		}

		for st, n := range orderCounts {
			stats.OrdersByStatus[string(st)] = n
		}
		return stats, nil
	})
}

func (s *service) Collector(ctx context.Context) (*CollectorStats, error) {
	collectorID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if !utils.HasRole(ctx, utils.RoleCollector, utils.RoleAdmin) {
		return nil, apperr.Forbidden("collector role required")
	}

	key := fmt.Sprintf("collector:%d", collectorID)
	return cached(s, key, func() (*CollectorStats, error) {
		stats := &CollectorStats{}
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			jobs, err := s.collections.List(gctx, collection.Filter{CollectorID: &collectorID})
			if err != nil {
				return fmt.Errorf("collector jobs: %w", err)
			}
			var open []*collection.Submission
			for _, j := range jobs {
				switch j.Status {
				case collection.StatusScheduled, collection.StatusInProgress:
					stats.AssignedJobs++
					open = append(open, j)
				case collection.StatusCollected:
					stats.AwaitingApproval++
					open = append(open, j)
				}
			}
			stats.ProjectedEarnings = sumPayments(open)
			return nil
		})

		g.Go(func() error {
			totals, err := s.repo.PaymentTotals(gctx, &collectorID)
			if err != nil {
				return fmt.Errorf("collector payments: %w", err)
			}
			stats.PaidEarnings = totals.PaidOut
			return nil
		})

		if err := g.Wait(); err != nil {
			logger.FromCtx(ctx).Error("failed to load collector dashboard", zap.Error(err))
			return nil, err
		}
		return stats, nil
	})
}

func (s *service) User(ctx context.Context) (*UserStats, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	key := fmt.Sprintf("user:%d", userID)
	return cached(s, key, func() (*UserStats, error) {
		stats := &UserStats{SubmissionByStatus: map[string]int64{}}
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			w, err := s.wallets.GetWallet(gctx, userID)
			if err != nil {
				return fmt.Errorf("wallet: %w", err)
			}
			stats.WalletBalance = w.CurrentBalance
			return nil
		})

		var subCounts map[string]int64
		g.Go(func() error {
			var err error
			subCounts, err = s.repo.CollectionCounts(gctx, &userID)
			if err != nil {
				return fmt.Errorf("submissions: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			counts, err := s.orders.CountByStatus(gctx, &userID)
			if err != nil {
				return fmt.Errorf("orders: %w", err)
			}
			var total int64
			for _, n := range counts {
				total += n
			}
			stats.Orders = total
			return nil
		})

		if err := g.Wait(); err != nil {
			logger.FromCtx(ctx).Error("failed to load user dashboard", zap.Error(err))
			return nil, err
		}

		for st, n := range subCounts {
			stats.SubmissionByStatus[st] = n
			stats.Submissions += n
		}
		return stats, nil
	})
}
