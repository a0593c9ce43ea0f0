package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kvant-lab/vpnbot/internal/telegram"
	"github.com/kvant-lab/vpnbot/internal/worker"
)

const expiredMessage = "Ваша подписка истекла. Продлите её, чтобы восстановить доступ к VPN."

// Sweeper deactivates accounts whose subscription has lapsed. Each account
// is handled in its own transaction so one failure never blocks the rest.
type Sweeper struct {
	store Store
	gw    telegram.Gateway
	pool  *worker.Pool
	api   *VpnAPI
	audit *telegram.AuditLogger
	now   func() time.Time
}

func NewSweeper(store Store, gw telegram.Gateway, pool *worker.Pool, api *VpnAPI, audit *telegram.AuditLogger) *Sweeper {
	return &Sweeper{store: store, gw: gw, pool: pool, api: api, audit: audit, now: time.Now}
}

// Run performs one sweep pass and returns how many accounts were
// deactivated out of how many were found expired.
func (s *Sweeper) Run(ctx context.Context) (processed, found int, err error) {
	users, err := s.store.ExpiredActiveUsers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list expired users: %w", err)
	}
	found = len(users)
	if found == 0 {
		return 0, 0, nil
	}

	for i := range users {
		user := &users[i]
		renewed := false
		err := s.store.InTx(ctx, func(tx StoreTx) error {
			locked, err := tx.UserForUpdate(ctx, user.ID)
			if err != nil {
				return err
			}
			// Re-check under lock: a payment may have landed since the scan.
			if locked.ExpiresAt != nil && locked.ExpiresAt.After(s.now()) {
				renewed = true
				return nil
			}
			return tx.DeactivateUser(ctx, locked.ID)
		})
		if err != nil {
			slog.Error("deactivate expired user", "user_id", user.ID, "error", err)
			continue
		}
		if renewed {
			continue
		}

		processed++
		slog.Info("subscription expired", "user_id", user.ID, "telegram_id", user.TelegramID)
		s.pool.Submit(&VpnSetActiveJob{Store: s.store, API: s.api, UserID: user.ID, Active: false})
		s.pool.Submit(&NotifyJob{Gateway: s.gw, ChatID: user.TelegramID, Text: expiredMessage})
	}

	s.audit.LogExpirySweep(processed, found)
	return processed, found, nil
}

// Start runs the sweep on an interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.Run(ctx); err != nil {
				slog.Error("expiry sweep failed", "error", err)
			}
		}
	}
}
