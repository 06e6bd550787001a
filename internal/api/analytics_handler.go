package api

import (
	"net/http"

	"contentflow/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetAnalytics godoc
// @Summary Get analytics for a user
// @Description Returns the user's stored counters, sums and recent items derived from their content records, and windowed global statistics. The global numbers come from a bounded scan (see scan_window in the response) and under-count beyond it.
// @Tags Analytics
// @Produce json
// @Param user_id query string false "User identifier; defaults to the request identity"
// @Success 200 {object} domain.AnalyticsReport "Composed analytics view"
// @Failure 500 {object} errorEnvelope "Read path failure"
// @Router /analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = userIDFromContext(c)
	}

	report, err := h.analyticsService.GetUserAnalytics(c.Request.Context(), userID)
	if err != nil {
		abortWithEnvelope(c, http.StatusInternalServerError, err.Error(), "analytics_handler")
		return
	}

	c.JSON(http.StatusOK, report)
}
