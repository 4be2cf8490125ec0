package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"oceanwatch/internal/alerting"
	"oceanwatch/internal/config"
	"oceanwatch/internal/earnings"
	"oceanwatch/internal/fetcher"
	"oceanwatch/internal/scheduler"
)

// ErrEmptyAccount is returned when no account identifier is supplied.
var ErrEmptyAccount = errors.New("account identifier is required")

// Service composes the earnings fetcher and parser, and watches accounts for new payouts.
type Service struct {
	scheduler *scheduler.Scheduler
	fetcher   fetcher.EarningsFetcher
	notifier  alerting.Notifier
	logger    zerolog.Logger

	accounts    []string
	concurrency int
	alertsOn    bool

	mu       sync.Mutex
	lastSeen map[string]ledgerMark
}

// ledgerMark records the newest entry seen for an account. empty marks a
// ledger that had no entries, which is distinct from an entry with an empty Block.
type ledgerMark struct {
	block string
	empty bool
}

// New constructs the earnings service.
func New(cfg *config.Config, sched *scheduler.Scheduler, f fetcher.EarningsFetcher, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	concurrency := cfg.Ocean.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Service{
		scheduler:   sched,
		fetcher:     f,
		notifier:    notifier,
		logger:      logger.With().Str("component", "service").Logger(),
		accounts:    lo.Uniq(cfg.Ocean.Accounts),
		concurrency: concurrency,
		alertsOn:    cfg.Alerting.Enabled,
		lastSeen:    make(map[string]ledgerMark),
	}
}

// GetEarnings downloads and parses the earnings ledger for account.
// Fetch and parse failures keep their concrete types for errors.As.
func (s *Service) GetEarnings(ctx context.Context, account string) ([]earnings.Entry, error) {
	if strings.TrimSpace(account) == "" {
		return nil, ErrEmptyAccount
	}

	raw, err := s.fetcher.FetchEarnings(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("fetch earnings for %s: %w", account, err)
	}

	entries, err := earnings.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse earnings for %s: %w", account, err)
	}

	s.logger.Debug().Str("account", account).Int("entries", len(entries)).Msg("earnings parsed")
	return entries, nil
}

// Run begins the payout polling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	if len(s.accounts) == 0 {
		return fmt.Errorf("ocean.accounts is empty; nothing to watch")
	}
	return s.scheduler.Run(ctx, s.Poll)
}

// Poll checks every watched account once. A failing account does not stop the others.
func (s *Service) Poll(ctx context.Context, at time.Time) error {
	var (
		g      errgroup.Group
		errMu  sync.Mutex
		failed []error
	)
	g.SetLimit(s.concurrency)

	for _, account := range s.accounts {
		account := account
		g.Go(func() error {
			if err := s.pollAccount(ctx, account, at); err != nil {
				s.logger.Error().Err(err).Str("account", account).Msg("poll account failed")
				errMu.Lock()
				failed = append(failed, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(failed...)
}

func (s *Service) pollAccount(ctx context.Context, account string, at time.Time) error {
	entries, err := s.GetEarnings(ctx, account)
	if err != nil {
		return err
	}

	s.mu.Lock()
	last, known := s.lastSeen[account]
	if len(entries) > 0 {
		s.lastSeen[account] = ledgerMark{block: entries[0].Block}
	} else if !known {
		s.lastSeen[account] = ledgerMark{empty: true}
	}
	s.mu.Unlock()

	if !known {
		s.logger.Info().Str("account", account).Int("entries", len(entries)).Msg("baseline established")
		return nil
	}

	for _, entry := range NewPayouts(entries, last.block, !last.empty) {
		s.logger.Info().
			Str("account", account).
			Str("time", entry.Time).
			Str("block", entry.Block).
			Float64("earnings_btc", entry.EarningsBTC).
			Msg("new payout observed")

		if !s.alertsOn || s.notifier == nil {
			continue
		}
		if err := s.notifier.Notify(ctx, NotificationFor(account, entry, at)); err != nil {
			s.logger.Error().Err(err).Str("block", entry.Block).Msg("failed to dispatch alert")
		}
	}
	return nil
}

// NewPayouts returns the entries newer than lastBlock, oldest first.
// entries is expected newest first, as served by the pool. When hasLast is false
// nothing was seen before and every entry is new; an unknown lastBlock yields
// only the newest entry. An empty lastBlock is matched like any other value.
func NewPayouts(entries []earnings.Entry, lastBlock string, hasLast bool) []earnings.Entry {
	if len(entries) == 0 {
		return nil
	}
	if !hasLast {
		return lo.Reverse(append([]earnings.Entry(nil), entries...))
	}

	_, idx, found := lo.FindIndexOf(entries, func(e earnings.Entry) bool { return e.Block == lastBlock })
	if !found {
		return entries[:1]
	}
	return lo.Reverse(append([]earnings.Entry(nil), entries[:idx]...))
}

// NotificationFor converts an entry into a payout notification.
func NotificationFor(account string, entry earnings.Entry, observedAt time.Time) alerting.PayoutNotification {
	return alerting.PayoutNotification{
		Account:     account,
		Time:        entry.Time,
		Block:       entry.Block,
		ShareLogPct: entry.ShareLogPct,
		ShareCount:  entry.ShareCount,
		EarningsBTC: decimal.NewFromFloat(entry.EarningsBTC),
		PoolFeesBTC: decimal.NewFromFloat(entry.PoolFeesBTC),
		ObservedAt:  observedAt,
	}
}
