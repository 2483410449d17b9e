package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/pkg/batch"
)

// housekeepingPageSize is the drain page size for the expiry sweep.
const housekeepingPageSize = 100

// HousekeepingService periodically deletes verification codes that
// outlived their TTL so the tokens table never grows without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	CodeTTL  time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds the sweeper. A non-positive interval
// defaults to 1 hour, a non-positive TTL to 24 hours.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, codeTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if codeTTL <= 0 {
		codeTTL = 24 * time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		CodeTTL:  codeTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background sweep loop. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval, "code_ttl", s.CodeTTL)
}

// Stop blocks until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// sweep pages through expired tokens collecting their ids, then deletes
// them in one pass. Collect-then-delete keeps the paged source stable
// while the drain is walking it.
func (s *HousekeepingService) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.CodeTTL)

	var expired []string
	ran, err := batch.Drain(ctx,
		func(ctx context.Context, skip, take int) ([]domain.VerificationToken, error) {
			return s.Store.VerificationTokens().ListCreatedBefore(ctx, cutoff, skip, take)
		},
		func(ctx context.Context, tokens []domain.VerificationToken) error {
			for _, t := range tokens {
				expired = append(expired, t.ID)
			}
			return nil
		},
		housekeepingPageSize,
	)
	if err != nil {
		s.Logger.Error("housekeeping sweep failed", "error", err)
		return
	}
	if !ran {
		return
	}

	if err := s.Store.VerificationTokens().DeleteByIDs(ctx, expired); err != nil {
		s.Logger.Error("housekeeping delete failed", "error", err)
		return
	}
	s.Logger.Info("expired verification codes removed", "count", len(expired))
}
