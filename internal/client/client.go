// Package client provides an HTTP client for the CRM REST API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/evcraddock/medicall/internal/calendar"
	"github.com/evcraddock/medicall/internal/crm"
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/executive"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/stats"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// Client is an HTTP client for the CRM API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Error is a non-2xx response from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Query selects a period and an executive. Empty fields use the server
// defaults: the current month and every executive.
type Query struct {
	Year      string
	Month     string
	Day       string
	Executive string
}

func (q Query) values() url.Values {
	v := url.Values{}
	for k, s := range map[string]string{"year": q.Year, "month": q.Month, "day": q.Day, "executive": q.Executive} {
		if s != "" {
			v.Set(k, s)
		}
	}
	return v
}

// CalendarResponse is the response from GET /api/calendar.
type CalendarResponse struct {
	Date  string           `json:"date"`
	View  calendar.View    `json:"view"`
	Prev  string           `json:"prev"`
	Next  string           `json:"next"`
	Cells []*calendar.Cell `json:"cells"`
}

// ListDoctors returns the roster, optionally limited to one executive.
func (c *Client) ListDoctors(exec string) ([]doctor.Doctor, error) {
	path := "/api/doctors"
	if exec != "" {
		path += "?" + url.Values{"executive": {exec}}.Encode()
	}
	var doctors []doctor.Doctor
	if err := c.get(path, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// UpsertDoctor creates or replaces a doctor record.
func (c *Client) UpsertDoctor(d doctor.Doctor) (*doctor.Doctor, error) {
	var saved doctor.Doctor
	if err := c.send(http.MethodPost, "/api/doctors", d, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteDoctor removes a doctor.
func (c *Client) DeleteDoctor(id string) error {
	return c.send(http.MethodDelete, "/api/doctors/"+url.PathEscape(id), nil, nil)
}

// PlanVisit schedules a visit and returns the updated doctor.
func (c *Client) PlanVisit(req doctor.PlanRequest) (*doctor.Doctor, error) {
	var d doctor.Doctor
	if err := c.send(http.MethodPost, visitsPath(req.DoctorID), req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReportVisit records the outcome of a visit and returns the updated doctor.
func (c *Client) ReportVisit(req doctor.ReportRequest) (*doctor.Doctor, error) {
	var d doctor.Doctor
	if err := c.send(http.MethodPut, visitsPath(req.DoctorID)+"/"+url.PathEscape(req.VisitID), req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReportDraft returns the pre-filled report form for a visit.
func (c *Client) ReportDraft(doctorID, visitID string) (*doctor.Draft, error) {
	var draft doctor.Draft
	if err := c.get(visitsPath(doctorID)+"/"+url.PathEscape(visitID)+"/draft", &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteVisit removes a visit. A doctor that no longer exists is not an
// error; the returned doctor is nil in that case.
func (c *Client) DeleteVisit(doctorID, visitID string) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := c.send(http.MethodDelete, visitsPath(doctorID)+"/"+url.PathEscape(visitID), nil, &d)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func visitsPath(doctorID string) string {
	return "/api/doctors/" + url.PathEscape(doctorID) + "/visits"
}

// Seed loads an initial roster into an empty server.
func (c *Client) Seed(doctors []doctor.Doctor) (*crm.SeedResult, error) {
	var res crm.SeedResult
	if err := c.send(http.MethodPost, "/api/seed", doctors, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListProcedures returns every procedure.
func (c *Client) ListProcedures() ([]procedure.Procedure, error) {
	var procedures []procedure.Procedure
	if err := c.get("/api/procedures", &procedures); err != nil {
		return nil, err
	}
	return procedures, nil
}

// UpsertProcedure creates or replaces a procedure.
func (c *Client) UpsertProcedure(p procedure.Procedure) (*procedure.Procedure, error) {
	var saved procedure.Procedure
	if err := c.send(http.MethodPost, "/api/procedures", p, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteProcedure removes a procedure.
func (c *Client) DeleteProcedure(id string) error {
	return c.send(http.MethodDelete, "/api/procedures/"+url.PathEscape(id), nil, nil)
}

// ListTimeOff returns every absence.
func (c *Client) ListTimeOff() ([]timeoff.Event, error) {
	var events []timeoff.Event
	if err := c.get("/api/timeoff", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// AddTimeOff records an absence.
func (c *Client) AddTimeOff(e timeoff.Event) (*timeoff.Event, error) {
	var saved timeoff.Event
	if err := c.send(http.MethodPost, "/api/timeoff", e, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteTimeOff removes an absence.
func (c *Client) DeleteTimeOff(id string) error {
	return c.send(http.MethodDelete, "/api/timeoff/"+url.PathEscape(id), nil, nil)
}

// Stats returns the dashboard for q.
func (c *Client) Stats(q Query) (*stats.Result, error) {
	var res stats.Result
	if err := c.get(withQuery("/api/stats", q.values()), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Calendar returns the grid of view around date (YYYY-MM-DD, empty for
// today).
func (c *Client) Calendar(date string, view calendar.View, exec string) (*CalendarResponse, error) {
	v := url.Values{}
	if date != "" {
		v.Set("date", date)
	}
	if view != "" {
		v.Set("view", string(view))
	}
	if exec != "" {
		v.Set("executive", exec)
	}
	var resp CalendarResponse
	if err := c.get(withQuery("/api/calendar", v), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DaySlots returns the time slots of a day.
func (c *Client) DaySlots(date, exec string) ([]calendar.Slot, error) {
	v := url.Values{}
	if date != "" {
		v.Set("date", date)
	}
	if exec != "" {
		v.Set("executive", exec)
	}
	var slots []calendar.Slot
	if err := c.get(withQuery("/api/calendar/slots", v), &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Executives returns the executive directory.
func (c *Client) Executives() (executive.Directory, error) {
	var dir executive.Directory
	if err := c.get("/api/executives", &dir); err != nil {
		return nil, err
	}
	return dir, nil
}

// Export writes a CSV report (visits, procedures or timeoff) to w and
// returns the file name suggested by the server.
func (c *Client) Export(kind string, q Query, w io.Writer) (string, error) {
	return c.download(withQuery("/api/export/"+url.PathEscape(kind)+".csv", q.values()), w)
}

// Backup writes a full JSON backup to w and returns its file name.
func (c *Client) Backup(w io.Writer) (string, error) {
	return c.download("/api/backup", w)
}

// Restore uploads a JSON backup.
func (c *Client) Restore(r io.Reader) (*crm.RestoreResult, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/backup", r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var res crm.RestoreResult
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// send performs a request with an optional JSON body and decodes the
// response.
func (c *Client) send(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// download streams a GET response body to w.
func (c *Client) download(path string, w io.Writer) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", responseError(resp.StatusCode, body)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var name string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return name, nil
}

// do executes an HTTP request and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer closeBody(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return responseError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func responseError(code int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &Error{StatusCode: code, Message: errResp.Error}
	}
	return &Error{StatusCode: code, Message: "server error: " + http.StatusText(code)}
}

func closeBody(resp *http.Response) {
	if cerr := resp.Body.Close(); cerr != nil {
		fmt.Printf("warning: closing response body: %v\n", cerr)
	}
}
