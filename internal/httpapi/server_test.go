package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/service"
)

// stubStore overrides only the store methods the routes under test touch.
type stubStore struct {
	service.Store
	users   []domain.User
	total   int64
	servers []domain.VpnServer
	deleted []int64
}

func (s *stubStore) ListUsers(ctx context.Context, limit, offset int64, usernameFilter string) ([]domain.User, int64, error) {
	return s.users, s.total, nil
}

func (s *stubStore) VpnServers(ctx context.Context) ([]domain.VpnServer, error) {
	return s.servers, nil
}

func (s *stubStore) CreateVpnServer(ctx context.Context, srv *domain.VpnServer) (*domain.VpnServer, error) {
	created := *srv
	created.ID = 1
	return &created, nil
}

func (s *stubStore) DeleteVpnServer(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubUserAdmin struct {
	lastID    int64
	lastPatch service.UserPatch
	user      *domain.User
	err       error
}

func (s *stubUserAdmin) AdminUpdate(ctx context.Context, id int64, patch service.UserPatch) (*domain.User, error) {
	s.lastID = id
	s.lastPatch = patch
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubSweeper struct {
	processed, found int
}

func (s *stubSweeper) Run(ctx context.Context) (int, int, error) {
	return s.processed, s.found, nil
}

const testToken = "test-token"

func newTestServer(store *stubStore, users *stubUserAdmin, sweep *stubSweeper) *httptest.Server {
	if store == nil {
		store = &stubStore{}
	}
	if users == nil {
		users = &stubUserAdmin{user: &domain.User{ID: 1}}
	}
	if sweep == nil {
		sweep = &stubSweeper{}
	}
	return httptest.NewServer(NewServer(store, users, sweep, testToken).Handler())
}

func doRequest(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	defer srv.Close()

	resp := doRequest(t, http.MethodGet, srv.URL+"/health", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAPIRejectsMissingOrWrongToken(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	defer srv.Close()

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/users", "", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/users", "wrong", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListUsers(t *testing.T) {
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &stubStore{
		users: []domain.User{
			{ID: 1, TelegramID: 100, TelegramUsername: "alice", IsActive: true, ExpiresAt: &expires, Balance: 50},
		},
		total: 1,
	}
	srv := newTestServer(store, nil, nil)
	defer srv.Close()

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/users?limit=10", testToken, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Users []userDTO `json:"users"`
		Total int64     `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Total)
	require.Len(t, body.Users, 1)
	assert.Equal(t, "alice", body.Users[0].TelegramUsername)
	assert.Equal(t, int64(50), body.Users[0].Balance)
}

func TestPatchUser(t *testing.T) {
	users := &stubUserAdmin{user: &domain.User{ID: 7, IsActive: true, Balance: 200}}
	srv := newTestServer(nil, users, nil)
	defer srv.Close()

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/users/7", testToken, `{"is_active":true,"balance":200}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int64(7), users.lastID)
	require.NotNil(t, users.lastPatch.IsActive)
	assert.True(t, *users.lastPatch.IsActive)
	require.NotNil(t, users.lastPatch.Balance)
	assert.Equal(t, int64(200), *users.lastPatch.Balance)
	assert.Nil(t, users.lastPatch.ExpiresAt)
}

func TestPatchUserValidation(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	defer srv.Close()

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/users/abc", testToken, `{}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodPatch, srv.URL+"/api/users/7", testToken, `{"balance":-5}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPatchUserNotFound(t *testing.T) {
	users := &stubUserAdmin{err: domain.ErrUserNotFound}
	srv := newTestServer(nil, users, nil)
	defer srv.Close()

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/users/99", testToken, `{"balance":1}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerLifecycle(t *testing.T) {
	store := &stubStore{
		servers: []domain.VpnServer{{ID: 3, Title: "Amsterdam", Country: "nl", Protocol: "vless"}},
	}
	srv := newTestServer(store, nil, nil)
	defer srv.Close()

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/vpn-servers", testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Servers []serverDTO `json:"servers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list.Servers, 1)
	assert.Equal(t, "Amsterdam", list.Servers[0].Title)

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/vpn-servers", testToken,
		`{"title":"Berlin","vpn_url":"https://b.example","country":"de","protocol":"vless"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/vpn-servers", testToken, `{"title":"NoURL"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/vpn-servers/3", testToken, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, []int64{3}, store.deleted)
}

func TestManualSweep(t *testing.T) {
	srv := newTestServer(nil, nil, &stubSweeper{processed: 2, found: 3})
	defer srv.Close()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/sweep", testToken, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body["deactivated"])
	assert.Equal(t, 3, body["expired"])
}
