package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wonny/stockpulse/internal/api/middleware"
	"github.com/wonny/stockpulse/internal/dashboard"
	"github.com/wonny/stockpulse/internal/service/session"
)

// DashboardHandler renders the dashboard page
type DashboardHandler struct {
	registry *dashboard.Registry
	sessions *session.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(registry *dashboard.Registry, sessions *session.Service) *DashboardHandler {
	return &DashboardHandler{
		registry: registry,
		sessions: sessions,
	}
}

// Page renders the full dashboard
// GET /?symbol=MSFT&timeframe=1Y&q=MS&refresh=1
func (h *DashboardHandler) Page(c *gin.Context) {
	sid := middleware.GetSessionID(c)
	ctrl := h.registry.Controller(sid)

	if symbol, ok := c.GetQuery("symbol"); ok {
		ctrl.Select(symbol)
	}
	if tf, ok := c.GetQuery("timeframe"); ok {
		ctrl.SetTimeframe(tf)
	}

	// failures are logged by the controller and shown as an empty chart
	_ = ctrl.LoadChart(c.Request.Context(), c.Query("refresh") != "")

	c.HTML(http.StatusOK, dashboard.TemplateName, ctrl.View(c.Query("q"), h.viewer(sid)))
}

func (h *DashboardHandler) viewer(sid string) dashboard.Viewer {
	v := dashboard.Viewer{AuthAvailable: h.sessions.Available()}
	if user, ok := h.sessions.CurrentUser(sid); ok {
		v.SignedIn = true
		v.Name = user.DisplayName()
	}
	return v
}
