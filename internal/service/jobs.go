package service

import (
	"context"
	"fmt"

	"github.com/kvant-lab/vpnbot/internal/telegram"
)

// VpnSetActiveJob propagates the user's access state to every VPN server.
// Servers the user is not registered on are skipped.
type VpnSetActiveJob struct {
	Store  Store
	API    *VpnAPI
	UserID int64
	Active bool
}

func (j *VpnSetActiveJob) Name() string { return "vpn_set_active" }

func (j *VpnSetActiveJob) Run(ctx context.Context) error {
	user, err := j.Store.UserByID(ctx, j.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", j.UserID, err)
	}
	if user.VpnID == nil {
		// Never provisioned, nothing to toggle remotely.
		return nil
	}

	servers, err := j.Store.VpnServers(ctx)
	if err != nil {
		return fmt.Errorf("list servers: %w", err)
	}

	var firstErr error
	for i := range servers {
		srv := &servers[i]
		if err := j.API.SetUserActive(ctx, srv, *user.VpnID, j.Active); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("server %q: %w", srv.Title, err)
			}
		}
	}
	return firstErr
}

// NotifyJob sends a single message to a chat through the worker pool so
// sweep and admin flows do not block on Telegram round trips.
type NotifyJob struct {
	Gateway telegram.Gateway
	ChatID  int64
	Text    string
}

func (j *NotifyJob) Name() string { return "notify" }

func (j *NotifyJob) Run(ctx context.Context) error {
	return j.Gateway.SendMessage(ctx, j.ChatID, j.Text)
}
