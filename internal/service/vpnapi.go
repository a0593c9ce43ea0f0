package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kvant-lab/vpnbot/internal/domain"
)

// VpnAPI talks to the per-server management endpoints. Each server carries
// its own base URL and bearer token.
type VpnAPI struct {
	client *http.Client
}

func NewVpnAPI(timeout time.Duration) *VpnAPI {
	return &VpnAPI{client: &http.Client{Timeout: timeout}}
}

type vpnCreateUserRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
}

type vpnCreateUserResponse struct {
	ID int64 `json:"id"`
}

type vpnConfigResponse struct {
	Config string `json:"config"`
}

// CreateUser registers the user on the server and returns the remote id.
func (a *VpnAPI) CreateUser(ctx context.Context, srv *domain.VpnServer, telegramID int64, username string) (int64, error) {
	body, err := json.Marshal(vpnCreateUserRequest{TelegramID: telegramID, Username: username})
	if err != nil {
		return 0, fmt.Errorf("marshal create user request: %w", err)
	}

	var resp vpnCreateUserResponse
	if err := a.do(ctx, srv, http.MethodPost, "/api/users", bytes.NewReader(body), &resp); err != nil {
		return 0, fmt.Errorf("vpn create user: %w", err)
	}
	return resp.ID, nil
}

// UserConfig fetches the connection config for a previously created user.
func (a *VpnAPI) UserConfig(ctx context.Context, srv *domain.VpnServer, vpnID int64) (string, error) {
	var resp vpnConfigResponse
	path := fmt.Sprintf("/api/users/%d/config", vpnID)
	if err := a.do(ctx, srv, http.MethodGet, path, nil, &resp); err != nil {
		return "", fmt.Errorf("vpn user config: %w", err)
	}
	return resp.Config, nil
}

// SetUserActive toggles the user's access on the server.
func (a *VpnAPI) SetUserActive(ctx context.Context, srv *domain.VpnServer, vpnID int64, active bool) error {
	body, err := json.Marshal(map[string]bool{"is_active": active})
	if err != nil {
		return fmt.Errorf("marshal patch request: %w", err)
	}
	path := fmt.Sprintf("/api/users/%d", vpnID)
	if err := a.do(ctx, srv, http.MethodPatch, path, bytes.NewReader(body), nil); err != nil {
		return fmt.Errorf("vpn set active: %w", err)
	}
	return nil
}

func (a *VpnAPI) do(ctx context.Context, srv *domain.VpnServer, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, srv.VpnURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+srv.BearerToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
