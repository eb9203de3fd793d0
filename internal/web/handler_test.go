package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labattendance/internal/attendance"
	"labattendance/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var at = time.Date(2026, 10, 16, 14, 5, 0, 0, time.Local)

type client struct {
	t       *testing.T
	router  http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, s attendance.Store, pinger Pinger, redis func(context.Context) bool) *client {
	t.Helper()
	svc := attendance.NewService(s, attendance.ResetPerDay, attendance.WithClock(func() time.Time { return at }))
	h := New(svc, "test-secret-key", pinger, redis)
	return &client{t: t, router: NewRouter(h, RouterOptions{})}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func (c *client) submit(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := c.do(req)
	require.Equal(c.t, http.StatusSeeOther, rec.Code)
	assert.Equal(c.t, "/", rec.Header().Get("Location"))
	return rec
}

func (c *client) page() string {
	rec := c.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(c.t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func (c *client) api(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := c.do(req)
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestPage_ClockInAndOut(t *testing.T) {
	c := newClient(t, store.NewMemory(), nil, nil)

	assert.Contains(t, c.page(), "No attendance records found.")

	c.submit(url.Values{"action": {"clock_in"}, "identifier": {"A1"}, "name": {"Alice"}})
	body := c.page()
	assert.Contains(t, body, `<div class="flash success">Alice clocked in at 02:05 PM</div>`)
	assert.Contains(t, body, "<td>A1</td>")
	assert.Contains(t, body, "<td>2026-10-16</td>")
	assert.Contains(t, body, `<td class="open">---</td>`)

	// Flashes are shown once.
	assert.NotContains(t, c.page(), "clocked in at")

	c.submit(url.Values{"action": {"clock_in"}, "identifier": {"A1"}, "name": {"Alice"}})
	assert.Contains(t, c.page(), `<div class="flash error">A1 is already clocked in. Please clock out first.</div>`)

	c.submit(url.Values{"action": {"clock_out"}, "identifier": {"A1"}})
	body = c.page()
	assert.Contains(t, body, "Alice clocked out at 02:05 PM")
	assert.NotContains(t, body, "---")
}

func TestPage_RejectionMessages(t *testing.T) {
	c := newClient(t, store.NewMemory(), nil, nil)

	c.submit(url.Values{"action": {"clock_in"}, "identifier": {"A1"}})
	assert.Contains(t, c.page(), "Please enter both identifier and name")

	c.submit(url.Values{"action": {"clock_out"}})
	assert.Contains(t, c.page(), "Please enter identifier")

	c.submit(url.Values{"action": {"clock_out"}, "identifier": {"B2"}})
	assert.Contains(t, c.page(), "B2 has not clocked in yet.")

	c.submit(url.Values{"action": {"dance"}, "identifier": {"B2"}})
	assert.Contains(t, c.page(), "Unknown action")
}

func TestPage_MatricNoField(t *testing.T) {
	mem := store.NewMemory()
	c := newClient(t, mem, nil, nil)

	c.submit(url.Values{"action": {"clock_in"}, "matric_no": {"CSC/19/001"}, "name": {"Bola"}})
	open, err := mem.FindOpenSession(context.Background(), "CSC/19/001")
	require.NoError(t, err)
	require.NotNil(t, open)
}

type downStore struct{}

var errDown = errors.New("dial tcp: connection refused")

func (downStore) FindOpenSession(context.Context, string) (*attendance.Record, error) {
	return nil, errDown
}
func (downStore) CreateSession(context.Context, string, string, string, string) (int64, error) {
	return 0, errDown
}
func (downStore) CloseSession(context.Context, int64, string) error    { return errDown }
func (downStore) ListAll(context.Context) ([]attendance.Record, error) { return nil, errDown }
func (downStore) ClearAll(context.Context) error                       { return errDown }
func (downStore) LastRecordDate(context.Context) (string, bool, error) { return "", false, errDown }
func (downStore) Ping(context.Context) error                           { return errDown }

func TestPage_StoreUnavailable(t *testing.T) {
	c := newClient(t, downStore{}, downStore{}, nil)

	body := c.page()
	assert.Contains(t, body, "Error loading records.")
	assert.Contains(t, body, "No attendance records found.")

	c.submit(url.Values{"action": {"clock_in"}, "identifier": {"A1"}, "name": {"Alice"}})
	body = c.page()
	assert.Contains(t, body, "Database error. Please try again.")
	assert.NotContains(t, body, "connection refused")
}

func TestAPI(t *testing.T) {
	c := newClient(t, store.NewMemory(), nil, nil)

	rec, out := c.api(http.MethodPost, "/api/clock-in", `{"identifier":"A1","name":"Alice"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Alice clocked in at 02:05 PM", out["message"])

	rec, out = c.api(http.MethodPost, "/api/clock-in", `{"identifier":"A1","name":"Alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "A1 is already clocked in. Please clock out first.", out["error"])

	rec, out = c.api(http.MethodPost, "/api/clock-in", `{"identifier":"B2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter both identifier and name", out["error"])

	rec, _ = c.api(http.MethodPost, "/api/clock-in", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = c.api(http.MethodPost, "/api/clock-out", `{"identifier":"A1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice clocked out at 02:05 PM", out["message"])
	record := out["record"].(map[string]any)
	assert.Equal(t, "14:05:00", record["clock_out"])

	rec, out = c.api(http.MethodPost, "/api/clock-out", `{"identifier":"A1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "A1 has not clocked in yet.", out["error"])

	rec, out = c.api(http.MethodGet, "/api/records", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	records := out["records"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0].(map[string]any)["identifier"])
}

func TestAPI_StoreUnavailable(t *testing.T) {
	c := newClient(t, downStore{}, nil, nil)

	rec, out := c.api(http.MethodPost, "/api/clock-out", `{"identifier":"A1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database error", out["error"])

	rec, out = c.api(http.MethodGet, "/api/records", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, out["records"])
}

func TestHealthz(t *testing.T) {
	c := newClient(t, store.NewMemory(), store.NewMemory(), nil)
	rec, out := c.api(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["store"])
	assert.NotContains(t, out, "redis")

	c = newClient(t, store.NewMemory(), store.NewMemory(), func(context.Context) bool { return false })
	rec, out = c.api(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, out["redis"])

	c = newClient(t, downStore{}, downStore{}, nil)
	rec, out = c.api(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", out["status"])
}

func TestCORSPreflight(t *testing.T) {
	c := newClient(t, store.NewMemory(), nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/clock-in", nil)
	req.Header.Set("Origin", "https://lab.example.edu")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := c.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
