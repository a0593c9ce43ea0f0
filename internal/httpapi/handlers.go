package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/service"
)

type userDTO struct {
	ID               int64      `json:"id"`
	TelegramID       int64      `json:"telegram_id"`
	TelegramUsername string     `json:"telegram_username"`
	VpnID            *int64     `json:"vpn_id"`
	IsActive         bool       `json:"is_active"`
	ExpiresAt        *time.Time `json:"expires_at"`
	Balance          int64      `json:"balance"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:               u.ID,
		TelegramID:       u.TelegramID,
		TelegramUsername: u.TelegramUsername,
		VpnID:            u.VpnID,
		IsActive:         u.IsActive,
		ExpiresAt:        u.ExpiresAt,
		Balance:          u.Balance,
		CreatedAt:        u.CreatedAt,
	}
}

type serverDTO struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	VpnURL   string `json:"vpn_url"`
	Country  string `json:"country"`
	Protocol string `json:"protocol"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.ParseInt(q.Get("offset"), 10, 64)
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.store.ListUsers(r.Context(), limit, offset, q.Get("username"))
	if err != nil {
		slog.Error("list users", "request_id", GetRequestID(r.Context()), "error", err)
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	items := make([]userDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": items,
		"total": total,
	})
}

type patchUserRequest struct {
	IsActive  *bool      `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
	Balance   *int64     `json:"balance"`
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req patchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Balance != nil && *req.Balance < 0 {
		http.Error(w, "balance must be non-negative", http.StatusBadRequest)
		return
	}

	user, err := s.users.AdminUpdate(r.Context(), id, service.UserPatch{
		IsActive:  req.IsActive,
		ExpiresAt: req.ExpiresAt,
		Balance:   req.Balance,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		slog.Error("patch user", "request_id", GetRequestID(r.Context()), "user_id", id, "error", err)
		http.Error(w, "failed to update user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	servers, err := s.store.VpnServers(r.Context())
	if err != nil {
		slog.Error("list servers", "request_id", GetRequestID(r.Context()), "error", err)
		http.Error(w, "failed to list servers", http.StatusInternalServerError)
		return
	}

	items := make([]serverDTO, 0, len(servers))
	for _, srv := range servers {
		items = append(items, serverDTO{
			ID:       srv.ID,
			Title:    srv.Title,
			VpnURL:   srv.VpnURL,
			Country:  srv.Country,
			Protocol: srv.Protocol,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"servers": items})
}

type createServerRequest struct {
	Title       string `json:"title"`
	VpnURL      string `json:"vpn_url"`
	BearerToken string `json:"bearer_token"`
	Country     string `json:"country"`
	Protocol    string `json:"protocol"`
}

func (s *Server) handleCreateServer(w http.ResponseWriter, r *http.Request) {
	var req createServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.VpnURL == "" {
		http.Error(w, "title and vpn_url are required", http.StatusBadRequest)
		return
	}

	srv, err := s.store.CreateVpnServer(r.Context(), &domain.VpnServer{
		Title:       req.Title,
		VpnURL:      req.VpnURL,
		BearerToken: req.BearerToken,
		Country:     req.Country,
		Protocol:    req.Protocol,
	})
	if err != nil {
		slog.Error("create server", "request_id", GetRequestID(r.Context()), "error", err)
		http.Error(w, "failed to create server", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, serverDTO{
		ID:       srv.ID,
		Title:    srv.Title,
		VpnURL:   srv.VpnURL,
		Country:  srv.Country,
		Protocol: srv.Protocol,
	})
}

func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid server id", http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteVpnServer(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrServerNotFound) {
			http.Error(w, "server not found", http.StatusNotFound)
			return
		}
		slog.Error("delete server", "request_id", GetRequestID(r.Context()), "server_id", id, "error", err)
		http.Error(w, "failed to delete server", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	processed, found, err := s.sweep.Run(r.Context())
	if err != nil {
		slog.Error("manual sweep", "request_id", GetRequestID(r.Context()), "error", err)
		http.Error(w, "sweep failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"deactivated": processed,
		"expired":     found,
	})
}
