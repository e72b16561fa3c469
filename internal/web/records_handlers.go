package web

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// handleAPIProcedures routes /api/procedures.
func (s *Server) handleAPIProcedures(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		procedures, err := s.svc.ListProcedures(r.Context())
		if err != nil {
			apiFail(w, "listing procedures", err)
			return
		}
		apiJSON(w, procedures, http.StatusOK)

	case http.MethodPost:
		var p procedure.Procedure
		if !decodeBody(w, r, &p) {
			return
		}
		if strings.TrimSpace(p.ID) == "" {
			p.ID = uuid.NewString()
		}
		saved, err := s.svc.UpsertProcedure(r.Context(), p)
		if err != nil {
			apiFail(w, "saving procedure", err)
			return
		}
		apiJSON(w, saved, http.StatusOK)

	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPIProcedureRoute routes /api/procedures/{id}.
func (s *Server) handleAPIProcedureRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := trailingID(w, r, "/api/procedures/")
	if !ok {
		return
	}
	if err := s.svc.DeleteProcedure(r.Context(), id); err != nil {
		apiFail(w, "deleting procedure", err)
		return
	}
	apiJSON(w, map[string]interface{}{"id": id, "removed": true}, http.StatusOK)
}

// handleAPITimeOff routes /api/timeoff.
func (s *Server) handleAPITimeOff(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.svc.ListTimeOff(r.Context())
		if err != nil {
			apiFail(w, "listing time off", err)
			return
		}
		apiJSON(w, events, http.StatusOK)

	case http.MethodPost:
		var e timeoff.Event
		if !decodeBody(w, r, &e) {
			return
		}
		saved, err := s.svc.AddTimeOff(r.Context(), e)
		if err != nil {
			apiFail(w, "adding time off", err)
			return
		}
		apiJSON(w, saved, http.StatusCreated)

	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPITimeOffRoute routes /api/timeoff/{id}.
func (s *Server) handleAPITimeOffRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := trailingID(w, r, "/api/timeoff/")
	if !ok {
		return
	}
	if err := s.svc.DeleteTimeOff(r.Context(), id); err != nil {
		apiFail(w, "deleting time off", err)
		return
	}
	apiJSON(w, map[string]interface{}{"id": id, "removed": true}, http.StatusOK)
}

// trailingID extracts {id} from a DELETE prefix/{id} request.
func trailingID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if id == "" || strings.Contains(id, "/") {
		apiError(w, "not found", http.StatusNotFound)
		return "", false
	}
	if r.Method != http.MethodDelete {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	return id, true
}
