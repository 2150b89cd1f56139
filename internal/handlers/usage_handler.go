package handlers

import (
	"net/http"

	"policytracker/internal/services"
	"policytracker/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type UsageHandler struct {
	*BaseHandler
	usageService services.UsageService
}

func NewUsageHandler(base *BaseHandler, usageService services.UsageService) *UsageHandler {
	return &UsageHandler{
		BaseHandler:  base,
		usageService: usageService,
	}
}

func (h *UsageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	usage := rg.Group("/usage")
	{
		usage.GET("", h.Summary)
		usage.POST("/ocr", h.ConsumeOcrScan)
	}
}

// Summary answers the quota widget: current counters, tier limits and
// percentages.
func (h *UsageHandler) Summary(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	summary, err := h.usageService.FetchUsage(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ConsumeOcrScan charges one scan against the month's quota. The client
// calls this before running a scan; 403 means the tier ceiling is hit.
func (h *UsageHandler) ConsumeOcrScan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if !h.usageService.IncrementOcrUsage(c.Request.Context(), db, userID) {
		h.HandleServiceError(c, apperrors.ErrLimitExceeded("ocr",
			"OCR scan limit reached for your plan, upgrade for more scans"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Scan recorded"})
}
