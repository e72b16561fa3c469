package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evcraddock/medicall/internal/crm"
	"github.com/evcraddock/medicall/internal/db"
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/realtime"
	"github.com/evcraddock/medicall/internal/timeoff"
	"github.com/evcraddock/medicall/internal/web"
)

func TestListDoctors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/doctors" {
			t.Errorf("path = %q, want /api/doctors", r.URL.Path)
		}
		if got := r.URL.Query().Get("executive"); got != "LUIS" {
			t.Errorf("executive = %q, want LUIS", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]doctor.Doctor{{ID: "d1", Name: "DR. A"}}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	doctors, err := c.ListDoctors("LUIS")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(doctors) != 1 || doctors[0].Name != "DR. A" {
		t.Errorf("doctors = %+v", doctors)
	}
}

func TestPlanVisitSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/doctors/d1/visits" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req doctor.PlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Date != "2025-03-10" || !req.Appointment {
			t.Errorf("request = %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(doctor.Doctor{ID: "d1", Visits: []doctor.Visit{{ID: "v1"}}})
	}))
	defer srv.Close()

	d, err := New(srv.URL).PlanVisit(doctor.PlanRequest{DoctorID: "d1", Date: "2025-03-10", Appointment: true})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(d.Visits) != 1 {
		t.Errorf("visits = %d, want 1", len(d.Visits))
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"validation failed: report note is required"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ReportVisit(doctor.ReportRequest{DoctorID: "d1", VisitID: "v1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "report note is required") {
		t.Errorf("error = %q", err)
	}
	if IsNotFound(err) {
		t.Error("400 is not a not-found error")
	}
}

func TestServerErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListProcedures()
	if err == nil || !strings.Contains(err.Error(), "Bad Gateway") {
		t.Errorf("error = %v", err)
	}
}

func TestDeleteVisitMissingDoctorIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	d, err := New(srv.URL).DeleteVisit("gone", "v1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if d != nil {
		t.Errorf("doctor = %+v, want nil", d)
	}
}

func TestStatsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("year") != "2025" || q.Get("month") != "ALL" || q.Has("day") {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`{"totalDoctors":3,"plannedVisits":2}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Stats(Query{Year: "2025", Month: "ALL"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if res.TotalDoctors != 3 || res.PlannedVisits != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestExportFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/export/visits.csv" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="REPORTE_VISITAS_2025_2.csv"`)
		_, _ = w.Write([]byte("FECHA\n"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	name, err := New(srv.URL).Export("visits", Query{Year: "2025", Month: "2"}, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if name != "REPORTE_VISITAS_2025_2.csv" {
		t.Errorf("name = %q", name)
	}
	if buf.String() != "FECHA\n" {
		t.Errorf("body = %q", buf.String())
	}
}

// TestAgainstServer drives the real API end to end.
func TestAgainstServer(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})
	svc := crm.NewService(crm.Stores{
		Doctors:    doctor.NewRepository(d),
		Procedures: procedure.NewRepository(d),
		TimeOff:    timeoff.NewRepository(d),
	}, nil, nil)
	srv := httptest.NewServer(web.NewServer(svc, realtime.NewHub(), nil))
	defer srv.Close()

	c := New(srv.URL)

	seed, err := c.Seed([]doctor.Doctor{{ID: "d1", Executive: "LUIS", Name: "DR. A"}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !seed.Seeded {
		t.Error("expected seeded")
	}

	planned, err := c.PlanVisit(doctor.PlanRequest{DoctorID: "d1", Date: "2025-03-10", Time: "09:00"})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	visitID := planned.Visits[0].ID

	draft, err := c.ReportDraft("d1", visitID)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.Outcome != doctor.OutcomeFollowUp {
		t.Errorf("draft outcome = %q", draft.Outcome)
	}

	reported, err := c.ReportVisit(doctor.ReportRequest{DoctorID: "d1", VisitID: visitID, Note: "ok"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if reported.Visits[0].ID != visitID || reported.Visits[0].Status != doctor.StatusCompleted {
		t.Errorf("visit = %+v", reported.Visits[0])
	}

	res, err := c.Stats(Query{Year: "2025", Month: "2"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if res.CompletedVisits != 1 || res.Performance != 100 {
		t.Errorf("stats = %+v", res)
	}

	if _, err := c.DeleteVisit("d1", visitID); err != nil {
		t.Fatalf("delete visit: %v", err)
	}
	if _, err := c.DeleteVisit("nobody", visitID); err != nil {
		t.Fatalf("delete visit of missing doctor: %v", err)
	}

	var backup bytes.Buffer
	if _, err := c.Backup(&backup); err != nil {
		t.Fatalf("backup: %v", err)
	}
	restored, err := c.Restore(&backup)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Doctors != 1 {
		t.Errorf("restored = %+v", restored)
	}

	dir, err := c.Executives()
	if err != nil {
		t.Fatalf("executives: %v", err)
	}
	if len(dir) != 1 || dir[0].Name != "LUIS" {
		t.Errorf("executives = %+v", dir)
	}
}
