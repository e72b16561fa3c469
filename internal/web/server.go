// Package web provides the HTTP JSON API and websocket endpoint of the CRM.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evcraddock/medicall/internal/crm"
	"github.com/evcraddock/medicall/internal/logging"
	"github.com/evcraddock/medicall/internal/realtime"
)

const shutdownTimeout = 10 * time.Second

// Server is the CRM HTTP server.
type Server struct {
	svc         *crm.Service
	allowOrigin func(origin string) bool
	now         func() time.Time
	mux         *http.ServeMux
}

// NewServer creates a server for svc. Realtime events are served from hub
// on /ws. allowOrigin decides CORS and websocket origins; nil allows none.
func NewServer(svc *crm.Service, hub *realtime.Hub, allowOrigin func(origin string) bool) *Server {
	if allowOrigin == nil {
		allowOrigin = func(string) bool { return false }
	}

	s := &Server{
		svc:         svc,
		allowOrigin: allowOrigin,
		now:         time.Now,
		mux:         http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)

	s.mux.HandleFunc("/api/doctors", s.handleAPIDoctors)
	s.mux.HandleFunc("/api/doctors/", s.handleAPIDoctorRoute)
	s.mux.HandleFunc("/api/seed", s.handleAPISeed)

	s.mux.HandleFunc("/api/procedures", s.handleAPIProcedures)
	s.mux.HandleFunc("/api/procedures/", s.handleAPIProcedureRoute)
	s.mux.HandleFunc("/api/timeoff", s.handleAPITimeOff)
	s.mux.HandleFunc("/api/timeoff/", s.handleAPITimeOffRoute)

	s.mux.HandleFunc("/api/stats", s.handleAPIStats)
	s.mux.HandleFunc("/api/calendar", s.handleAPICalendar)
	s.mux.HandleFunc("/api/calendar/slots", s.handleAPICalendarSlots)
	s.mux.HandleFunc("/api/calendar/drop", s.handleAPICalendarDrop)
	s.mux.HandleFunc("/api/executives", s.handleAPIExecutives)

	s.mux.HandleFunc("/api/export/", s.handleAPIExport)
	s.mux.HandleFunc("/api/backup", s.handleAPIBackup)

	if hub != nil {
		s.mux.Handle("/ws", realtime.NewHandler(hub, allowOrigin))
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && s.allowOrigin(origin) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           logging.RequestLogger(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
