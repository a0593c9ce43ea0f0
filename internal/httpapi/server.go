package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/service"
)

// UserAdmin is the slice of UserService the API needs.
type UserAdmin interface {
	AdminUpdate(ctx context.Context, id int64, patch service.UserPatch) (*domain.User, error)
}

// SweepRunner triggers one expiry sweep pass.
type SweepRunner interface {
	Run(ctx context.Context) (processed, found int, err error)
}

// Server is the bearer-authed admin API. The bot itself never goes through
// it; it exists for operator tooling.
type Server struct {
	store service.Store
	users UserAdmin
	sweep SweepRunner
	token string
}

func NewServer(store service.Store, users UserAdmin, sweep SweepRunner, token string) *Server {
	return &Server{store: store, users: users, sweep: sweep, token: token}
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/users", s.handleListUsers)
	api.HandleFunc("PATCH /api/users/{id}", s.handlePatchUser)
	api.HandleFunc("GET /api/vpn-servers", s.handleListServers)
	api.HandleFunc("POST /api/vpn-servers", s.handleCreateServer)
	api.HandleFunc("DELETE /api/vpn-servers/{id}", s.handleDeleteServer)
	api.HandleFunc("POST /api/sweep", s.handleSweep)

	mux.Handle("/api/", BearerAuth(s.token, api))

	return RequestID(mux)
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
