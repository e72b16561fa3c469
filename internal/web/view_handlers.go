package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/export"
	"github.com/evcraddock/medicall/internal/period"
)

// maxDropBody bounds a drag payload.
const maxDropBody = 4 << 10

// selection reads year, month and day query parameters. Without a year the
// current month is selected.
func (s *Server) selection(r *http.Request) (period.Selection, error) {
	q := r.URL.Query()
	year, month := q.Get("year"), q.Get("month")
	if year == "" {
		now := s.now()
		year = strconv.Itoa(now.Year())
		if month == "" {
			month = strconv.Itoa(int(now.Month()) - 1)
		}
	}
	return period.Parse(year, month, q.Get("day"))
}

// refDate reads the date query parameter, defaulting to today.
func (s *Server) refDate(r *http.Request) (time.Time, error) {
	if v := r.URL.Query().Get("date"); v != "" {
		t, err := calendar.ParseDate(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", period.ErrInvalidSelection, err)
		}
		return t, nil
	}
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sel, err := s.selection(r)
	if err != nil {
		apiFail(w, "reading period", err)
		return
	}
	res, err := s.svc.Stats(r.Context(), sel, r.URL.Query().Get("executive"))
	if err != nil {
		apiFail(w, "computing stats", err)
		return
	}
	apiJSON(w, res, http.StatusOK)
}

type calendarResponse struct {
	Date  string           `json:"date"`
	View  calendar.View    `json:"view"`
	Prev  string           `json:"prev"`
	Next  string           `json:"next"`
	Cells []*calendar.Cell `json:"cells"`
}

func (s *Server) handleAPICalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view, err := calendar.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		apiFail(w, "reading view", err)
		return
	}
	ref, err := s.refDate(r)
	if err != nil {
		apiFail(w, "reading date", err)
		return
	}

	cells, err := s.svc.Calendar(r.Context(), ref, view, r.URL.Query().Get("executive"))
	if err != nil {
		apiFail(w, "rendering calendar", err)
		return
	}
	apiJSON(w, calendarResponse{
		Date:  calendar.Key(ref),
		View:  view,
		Prev:  calendar.Key(calendar.Navigate(ref, view, -1)),
		Next:  calendar.Key(calendar.Navigate(ref, view, 1)),
		Cells: cells,
	}, http.StatusOK)
}

func (s *Server) handleAPICalendarSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ref, err := s.refDate(r)
	if err != nil {
		apiFail(w, "reading date", err)
		return
	}
	slots, err := s.svc.DaySlots(r.Context(), ref, r.URL.Query().Get("executive"))
	if err != nil {
		apiFail(w, "rendering day", err)
		return
	}
	apiJSON(w, slots, http.StatusOK)
}

// handleAPICalendarDrop deletes the visit named by a drag payload dropped
// on the calendar's delete zone.
func (s *Server) handleAPICalendarDrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDropBody))
	if err != nil {
		apiError(w, "reading body", http.StatusBadRequest)
		return
	}
	target, err := calendar.DecodeDropTarget(data)
	if err != nil {
		apiFail(w, "reading drop", err)
		return
	}
	d, err := s.svc.DeleteVisit(r.Context(), target.DoctorID, target.VisitID)
	if err != nil {
		apiFail(w, "deleting visit", err)
		return
	}
	apiJSON(w, d, http.StatusOK)
}

func (s *Server) handleAPIExecutives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	dir, err := s.svc.Executives(r.Context())
	if err != nil {
		apiFail(w, "listing executives", err)
		return
	}
	apiJSON(w, dir, http.StatusOK)
}

// handleAPIExport serves /api/export/{visits|procedures|timeoff}.csv.
func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	kind := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/export/"), ".csv")
	exec := r.URL.Query().Get("executive")

	sel, err := s.selection(r)
	if err != nil {
		apiFail(w, "reading period", err)
		return
	}
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		apiFail(w, "loading records", err)
		return
	}

	var (
		buf  bytes.Buffer
		name string
	)
	switch kind {
	case "visits":
		name = export.VisitsFilename(sel)
		err = export.WriteVisits(&buf, snap.Doctors, sel, exec)
	case "procedures":
		name = export.ProceduresFilename(sel)
		err = export.WriteProcedures(&buf, snap.Procedures, snap.Doctors, sel, exec)
	case "timeoff":
		name = export.TimeOffFilename
		err = export.WriteTimeOff(&buf, snap.TimeOff, exec)
	default:
		apiError(w, "unknown export "+strings.TrimPrefix(r.URL.Path, "/api/export/"), http.StatusNotFound)
		return
	}
	if err != nil {
		apiFail(w, "writing export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleAPIBackup downloads (GET) or restores (POST) a full backup.
func (s *Server) handleAPIBackup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		b, err := s.svc.Backup(r.Context())
		if err != nil {
			apiFail(w, "building backup", err)
			return
		}
		var buf bytes.Buffer
		if err := export.WriteBackup(&buf, b); err != nil {
			apiFail(w, "writing backup", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.BackupFilename(s.now())))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)

	case http.MethodPost:
		b, err := export.ReadBackup(r.Body)
		if err != nil {
			apiFail(w, "reading backup", err)
			return
		}
		res, err := s.svc.Restore(r.Context(), b)
		if err != nil {
			apiFail(w, "restoring backup", err)
			return
		}
		apiJSON(w, res, http.StatusOK)

	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
