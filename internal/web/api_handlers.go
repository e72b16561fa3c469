package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/crm"
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/export"
	"github.com/evcraddock/medicall/internal/period"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiFail maps a service error to a status code and writes it.
func apiFail(w http.ResponseWriter, action string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error(action+" failed", "error", err)
		apiError(w, fmt.Sprintf("%s: %v", action, err), code)
		return
	}
	apiError(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, doctor.ErrNotFound),
		errors.Is(err, procedure.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, doctor.ErrValidation),
		errors.Is(err, procedure.ErrValidation),
		errors.Is(err, timeoff.ErrValidation),
		errors.Is(err, crm.ErrValidation),
		errors.Is(err, period.ErrInvalidSelection),
		errors.Is(err, calendar.ErrInvalidView),
		errors.Is(err, calendar.ErrInvalidDrop),
		errors.Is(err, export.ErrInvalidBackup):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// handleAPIDoctors routes /api/doctors.
func (s *Server) handleAPIDoctors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.apiListDoctors(w, r)
	case http.MethodPost:
		s.apiUpsertDoctor(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPIDoctorRoute routes /api/doctors/{id} and its visits.
func (s *Server) handleAPIDoctorRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/doctors/"), "/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		apiError(w, "doctor id is required", http.StatusBadRequest)
		return
	}
	id := parts[0]

	switch {
	// /api/doctors/{id}
	case len(parts) == 1:
		if r.Method != http.MethodDelete {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiDeleteDoctor(w, r, id)

	// /api/doctors/{id}/visits
	case len(parts) == 2 && parts[1] == "visits":
		if r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiPlanVisit(w, r, id)

	// /api/doctors/{id}/visits/{visitId}
	case len(parts) == 3 && parts[1] == "visits":
		switch r.Method {
		case http.MethodPut:
			s.apiReportVisit(w, r, id, parts[2])
		case http.MethodDelete:
			s.apiDeleteVisit(w, r, id, parts[2])
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	// /api/doctors/{id}/visits/{visitId}/draft
	case len(parts) == 4 && parts[1] == "visits" && parts[3] == "draft":
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiReportDraft(w, r, id, parts[2])

	default:
		apiError(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) apiListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.svc.ListDoctors(r.Context())
	if err != nil {
		apiFail(w, "listing doctors", err)
		return
	}
	if exec := r.URL.Query().Get("executive"); exec != "" {
		filtered := make([]doctor.Doctor, 0, len(doctors))
		for _, d := range doctors {
			if d.Executive == exec {
				filtered = append(filtered, d)
			}
		}
		doctors = filtered
	}
	apiJSON(w, doctors, http.StatusOK)
}

// apiUpsertDoctor creates or replaces a whole doctor record. A blank id
// creates a new doctor.
func (s *Server) apiUpsertDoctor(w http.ResponseWriter, r *http.Request) {
	var d doctor.Doctor
	if !decodeBody(w, r, &d) {
		return
	}
	if strings.TrimSpace(d.ID) == "" {
		d.ID = uuid.NewString()
	}

	saved, err := s.svc.UpsertDoctor(r.Context(), d)
	if err != nil {
		apiFail(w, "saving doctor", err)
		return
	}
	apiJSON(w, saved, http.StatusOK)
}

func (s *Server) apiDeleteDoctor(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.svc.DeleteDoctor(r.Context(), id); err != nil {
		apiFail(w, "deleting doctor", err)
		return
	}
	apiJSON(w, map[string]interface{}{"id": id, "removed": true}, http.StatusOK)
}

func (s *Server) apiPlanVisit(w http.ResponseWriter, r *http.Request, doctorID string) {
	var req doctor.PlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.DoctorID = doctorID

	d, err := s.svc.PlanVisit(r.Context(), req)
	if err != nil {
		apiFail(w, "planning visit", err)
		return
	}
	apiJSON(w, d, http.StatusCreated)
}

func (s *Server) apiReportVisit(w http.ResponseWriter, r *http.Request, doctorID, visitID string) {
	var req doctor.ReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.DoctorID = doctorID
	req.VisitID = visitID

	d, err := s.svc.ReportVisit(r.Context(), req)
	if err != nil {
		apiFail(w, "reporting visit", err)
		return
	}
	apiJSON(w, d, http.StatusOK)
}

func (s *Server) apiDeleteVisit(w http.ResponseWriter, r *http.Request, doctorID, visitID string) {
	d, err := s.svc.DeleteVisit(r.Context(), doctorID, visitID)
	if err != nil {
		apiFail(w, "deleting visit", err)
		return
	}
	apiJSON(w, d, http.StatusOK)
}

func (s *Server) apiReportDraft(w http.ResponseWriter, r *http.Request, doctorID, visitID string) {
	draft, err := s.svc.ReportDraft(r.Context(), doctorID, visitID)
	if err != nil {
		apiFail(w, "loading report draft", err)
		return
	}
	apiJSON(w, draft, http.StatusOK)
}

// handleAPISeed loads an initial roster into an empty store.
func (s *Server) handleAPISeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var doctors []doctor.Doctor
	if !decodeBody(w, r, &doctors) {
		return
	}

	res, err := s.svc.Seed(r.Context(), doctors)
	if err != nil {
		apiFail(w, "seeding roster", err)
		return
	}
	code := http.StatusOK
	if res.Seeded {
		code = http.StatusCreated
	}
	apiJSON(w, res, code)
}
