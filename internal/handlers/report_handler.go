package handlers

import (
	"net/http"

	"policytracker/internal/services"

	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the scheduled report trigger. The route is
// guarded by CronSecretMiddleware, not by user auth.
type ReportHandler struct {
	*BaseHandler
	reportService services.ReportService
}

func NewReportHandler(base *BaseHandler, reportService services.ReportService) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   base,
		reportService: reportService,
	}
}

func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports/monthly", h.SendMonthly)
}

func (h *ReportHandler) SendMonthly(c *gin.Context) {
	db := h.GetDB(c)

	sent, err := h.reportService.SendMonthlyReports(c.Request.Context(), db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
