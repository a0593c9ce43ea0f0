package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kvant-lab/vpnbot/internal/config"
	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/worker"
)

// NextExpiry computes the expiry after extending by months: remaining time
// stacks when the current expiry is still in the future, otherwise the clock
// restarts from now. A current expiry of exactly now counts as lapsed.
func NextExpiry(current *time.Time, months int, now time.Time) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, months, 0)
}

// ActivationResult is returned to the caller for message formatting.
type ActivationResult struct {
	NewBalance int64
	ExpiresAt  time.Time
}

// SubscriptionService converts held balance into subscription time.
type SubscriptionService struct {
	store Store
	pool  *worker.Pool
	api   *VpnAPI
	now   func() time.Time
}

func NewSubscriptionService(store Store, pool *worker.Pool, api *VpnAPI) *SubscriptionService {
	return &SubscriptionService{store: store, pool: pool, api: api, now: time.Now}
}

// Activate debits the account by the option's balance cost and extends the
// expiry, atomically. A rejected activation mutates nothing.
func (s *SubscriptionService) Activate(ctx context.Context, userID int64, opt config.ActivationOption) (*ActivationResult, error) {
	var result ActivationResult
	err := s.store.InTx(ctx, func(tx StoreTx) error {
		user, err := tx.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if user.Balance < opt.BalanceCost {
			return &domain.InsufficientBalanceError{
				Required: opt.BalanceCost,
				Current:  user.Balance,
			}
		}

		newBalance, err := tx.AddUserBalance(ctx, user.ID, -opt.BalanceCost)
		if err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}

		newExpiry := NextExpiry(user.ExpiresAt, opt.Months, s.now())
		if err := tx.SetUserSubscription(ctx, user.ID, newExpiry, true); err != nil {
			return fmt.Errorf("extend subscription: %w", err)
		}

		result = ActivationResult{NewBalance: newBalance, ExpiresAt: newExpiry}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("activate subscription: %w", err)
	}

	slog.Info("subscription activated from balance",
		"user_id", userID,
		"months", opt.Months,
		"cost", opt.BalanceCost,
		"new_balance", result.NewBalance,
		"expires_at", result.ExpiresAt,
	)
	s.pool.Submit(&VpnSetActiveJob{Store: s.store, API: s.api, UserID: userID, Active: true})
	return &result, nil
}
