package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/pantry/backend/internal/application/report"
)

// ReportHandler handles read-side report API endpoints
type ReportHandler struct {
	BaseHandler
	service *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// RegisterRoutes registers the report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/categories", h.CategoryReport)
		reports.GET("/categories/detailed", h.DetailedCategoryReport)
		reports.GET("/stock-in", h.StockInHistory)
		reports.GET("/stock-out", h.StockOutHistory)
		reports.GET("/expiry-alerts", h.ExpiryAlerts)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Categories)
		categories.GET("/stats", h.CategoryStatistics)
	}
}

// CategoryReport groups all stock by category, then by expiry day
func (h *ReportHandler) CategoryReport(c *gin.Context) {
	result, err := h.service.CategoryReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DetailedCategoryReport lists expiry-day groups, optionally restricted to
// the category given by the ?category query parameter
func (h *ReportHandler) DetailedCategoryReport(c *gin.Context) {
	result, err := h.service.DetailedCategoryReport(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// StockInHistory lists inbound movements, newest first
func (h *ReportHandler) StockInHistory(c *gin.Context) {
	var filter reportapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.StockInHistory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// StockOutHistory lists outbound movements, newest first
func (h *ReportHandler) StockOutHistory(c *gin.Context) {
	var filter reportapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.StockOutHistory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ExpiryAlerts lists stock expiring within the alert window
func (h *ReportHandler) ExpiryAlerts(c *gin.Context) {
	result, err := h.service.ExpiryAlerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Categories lists the distinct ingredient categories in use
func (h *ReportHandler) Categories(c *gin.Context) {
	result, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CategoryStatistics summarizes ingredient count and total stock per category
func (h *ReportHandler) CategoryStatistics(c *gin.Context) {
	result, err := h.service.CategoryStatistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
