package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"labattendance/internal/attendance"
)

const (
	sessionName  = "lab_attendance"
	flashSuccess = "success"
	flashError   = "error"

	msgDatabaseError = "Database error. Please try again."
	msgLoadError     = "Error loading records."
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the attendance page and JSON API.
type Handler struct {
	svc      *attendance.Service
	sessions sessions.Store
	store    Pinger
	redis    func(ctx context.Context) bool // nil when redis is not configured
}

// New creates a handler. secretKey signs the flash-message cookie.
func New(svc *attendance.Service, secretKey string, store Pinger, redisHealthy func(ctx context.Context) bool) *Handler {
	cookies := sessions.NewCookieStore([]byte(secretKey))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Handler{svc: svc, sessions: cookies, store: store, redis: redisHealthy}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "reset_mode": h.svc.Mode()}

	storeHealthy := h.store == nil || h.store.Ping(c.Request.Context()) == nil
	body["store"] = storeHealthy
	if !storeHealthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	if h.redis != nil {
		redisHealthy := h.redis(c.Request.Context())
		body["redis"] = redisHealthy
		if !redisHealthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ---------- HTML page ----------

// Index renders flashes and every record. A store failure renders an empty table.
func (h *Handler) Index(c *gin.Context) {
	sess := h.session(c)
	success := flashes(sess, flashSuccess)
	errs := flashes(sess, flashError)
	if err := sess.Save(c.Request, c.Writer); err != nil {
		log.Printf("save session: %v", err)
	}

	records, err := h.svc.Records(c.Request.Context())
	if err != nil {
		log.Printf("list records: %v", err)
		records = nil
		errs = append(errs, msgLoadError)
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Success":   success,
		"Errors":    errs,
		"Rows":      rows(records),
		"ResetMode": h.svc.Mode(),
	})
}

// Submit handles the clock-in and clock-out form and redirects back to the page.
func (h *Handler) Submit(c *gin.Context) {
	identifier := c.PostForm("identifier")
	if identifier == "" {
		identifier = c.PostForm("matric_no")
	}
	ctx := c.Request.Context()

	var (
		out attendance.Outcome
		err error
	)
	switch c.PostForm("action") {
	case string(attendance.ActionClockIn):
		out, err = h.svc.ClockIn(ctx, identifier, c.PostForm("name"))
	case string(attendance.ActionClockOut):
		out, err = h.svc.ClockOut(ctx, identifier)
	default:
		err = &attendance.ValidationError{Message: "Unknown action"}
	}

	sess := h.session(c)
	switch {
	case err == nil:
		sess.AddFlash(out.Message(), flashSuccess)
	case attendance.IsRejection(err):
		sess.AddFlash(err.Error(), flashError)
	default:
		log.Printf("%s for %q failed: %v", c.PostForm("action"), identifier, err)
		sess.AddFlash(msgDatabaseError, flashError)
	}
	if err := sess.Save(c.Request, c.Writer); err != nil {
		log.Printf("save session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) session(c *gin.Context) *sessions.Session {
	sess, err := h.sessions.Get(c.Request, sessionName)
	if err != nil {
		// Tampered or stale cookie; a fresh session is still returned.
		log.Printf("session decode: %v", err)
	}
	return sess
}

func flashes(sess *sessions.Session, category string) []string {
	var out []string
	for _, f := range sess.Flashes(category) {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ---------- JSON API ----------

type clockInRequest struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

type clockOutRequest struct {
	Identifier string `json:"identifier"`
}

func (h *Handler) APIClockIn(c *gin.Context) {
	var req clockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.svc.ClockIn(c.Request.Context(), req.Identifier, req.Name)
	if err != nil {
		h.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": out.Message(), "record": out.Record})
}

func (h *Handler) APIClockOut(c *gin.Context) {
	var req clockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.svc.ClockOut(c.Request.Context(), req.Identifier)
	if err != nil {
		h.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": out.Message(), "record": out.Record})
}

func (h *Handler) APIRecords(c *gin.Context) {
	records, err := h.svc.Records(c.Request.Context())
	if err != nil {
		log.Printf("list records: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database error", "records": []attendance.Record{}})
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *Handler) apiError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": publicMessage(err)})
}

func statusFor(err error) int {
	var (
		validation *attendance.ValidationError
		already    *attendance.AlreadyOpenError
		notOpen    *attendance.NotOpenError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &already), errors.As(err, &notOpen):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func publicMessage(err error) string {
	if attendance.IsRejection(err) {
		return err.Error()
	}
	log.Printf("attendance request failed: %v", err)
	return "database error"
}
