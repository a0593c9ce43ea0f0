package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvant-lab/vpnbot/internal/domain"
)

func TestVpnAPICreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(100), body["telegram_id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	api := NewVpnAPI(time.Second)
	server := &domain.VpnServer{VpnURL: srv.URL, BearerToken: "secret"}

	id, err := api.CreateUser(context.Background(), server, 100, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestVpnAPIUserConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users/7/config", r.URL.Path)
		w.Write([]byte(`{"config":"vless://example"}`))
	}))
	defer srv.Close()

	api := NewVpnAPI(time.Second)
	server := &domain.VpnServer{VpnURL: srv.URL, BearerToken: "secret"}

	cfg, err := api.UserConfig(context.Background(), server, 7)
	require.NoError(t, err)
	assert.Equal(t, "vless://example", cfg)
}

func TestVpnAPISetUserActive(t *testing.T) {
	var gotBody map[string]bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/users/7", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	api := NewVpnAPI(time.Second)
	server := &domain.VpnServer{VpnURL: srv.URL, BearerToken: "secret"}

	require.NoError(t, api.SetUserActive(context.Background(), server, 7, false))
	assert.Equal(t, map[string]bool{"is_active": false}, gotBody)
}

func TestVpnAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	api := NewVpnAPI(time.Second)
	server := &domain.VpnServer{VpnURL: srv.URL, BearerToken: "wrong"}

	_, err := api.CreateUser(context.Background(), server, 100, "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
