package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"labattendance/internal/httpmiddleware"
)

// RouterOptions carries the optional pieces of the router.
type RouterOptions struct {
	Limiter httpmiddleware.Limiter // nil disables rate limiting
	Metrics http.Handler           // nil disables /metrics
}

// NewRouter wires middleware and routes around h.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
		ExposeHeaders:   []string{httpmiddleware.RequestIDHeader},
		MaxAge:          24 * time.Hour,
	}))
	if opts.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(opts.Limiter))
	}
	r.SetHTMLTemplate(Templates())

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	r.GET("/healthz", h.Healthz)

	r.GET("/", h.Index)
	r.POST("/", h.Submit)

	api := r.Group("/api")
	{
		api.POST("/clock-in", h.APIClockIn)
		api.POST("/clock-out", h.APIClockOut)
		api.GET("/records", h.APIRecords)
	}

	return r
}
