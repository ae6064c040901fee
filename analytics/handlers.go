package analytics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the collect endpoint and the admin stats summary.
type Handler struct {
	store          *Store
	collectLimiter *rateLimiter
}

// NewHandler creates a Handler. The collect endpoint is rate-limited to 60
// requests per IP per minute.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:          store,
		collectLimiter: newRateLimiter(60, time.Minute),
	}
}

// RegisterRoutes mounts the public collect endpoint and the admin stats
// endpoint; adminMiddleware gates the latter.
func (h *Handler) RegisterRoutes(e *echo.Echo, adminMiddleware echo.MiddlewareFunc) {
	e.POST("/api/analytics/collect", h.Collect)
	e.GET("/api/admin/analytics", h.Stats, adminMiddleware)
}

// CollectRequest is the body the public site posts on each page view.
type CollectRequest struct {
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

const (
	maxPathLen     = 2048
	maxReferrerLen = 2048
)

func validateCollectRequest(req *CollectRequest) error {
	if req.Path == "" {
		return fmt.Errorf("path is required")
	}
	if len(req.Path) > maxPathLen {
		return fmt.Errorf("path exceeds maximum length of %d", maxPathLen)
	}
	if len(req.Referrer) > maxReferrerLen {
		return fmt.Errorf("referrer exceeds maximum length of %d", maxReferrerLen)
	}
	return nil
}

// Collect records one page view.
func (h *Handler) Collect(c echo.Context) error {
	if !h.collectLimiter.allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if err := validateCollectRequest(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	ip := c.RealIP()
	ua := c.Request().UserAgent()
	view := &PageView{
		VisitorID: VisitorID(ip, ua),
		IPHash:    HashIP(ip),
		Device:    DeviceClass(ua),
		Path:      req.Path,
		Referrer:  req.Referrer,
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.SaveView(view); err != nil {
		c.Logger().Errorf("failed to save page view: %v", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats serves the aggregated summary. ?days= selects the period (default
// 30, capped at 365).
func (h *Handler) Stats(c echo.Context) error {
	days := 30
	if v := c.QueryParam("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 365"})
		}
		days = n
	}
	stats, err := h.store.GetStats(days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
