package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/pantry/backend/internal/application/inventory"
)

// IngredientHandler handles ingredient and stock API endpoints
type IngredientHandler struct {
	BaseHandler
	service *inventoryapp.IngredientService
}

// NewIngredientHandler creates a new IngredientHandler
func NewIngredientHandler(service *inventoryapp.IngredientService) *IngredientHandler {
	return &IngredientHandler{service: service}
}

// RegisterRoutes registers the ingredient routes
func (h *IngredientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ingredients := rg.Group("/ingredients")
	{
		ingredients.POST("", h.Create)
		ingredients.GET("", h.List)
		// static routes before the :id wildcard
		ingredients.GET("/alerts", h.Alerts)
		ingredients.POST("/cleanup", h.CleanupExpired)
		ingredients.GET("/:id", h.Get)
		ingredients.PUT("/:id", h.Update)
		ingredients.DELETE("/:id", h.Delete)
		ingredients.POST("/:id/stock", h.AddStock)
		ingredients.GET("/:id/batches", h.ListBatches)
		ingredients.PUT("/:id/batches", h.AdjustBatch)
		ingredients.GET("/:id/quantity", h.TotalQuantity)
	}
}

// Create creates an ingredient together with its first batch
func (h *IngredientHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists ingredients with pagination and filters
func (h *IngredientHandler) List(c *gin.Context) {
	var filter inventoryapp.IngredientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get retrieves an ingredient with its batch ledger
func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update changes the catalog attributes of an ingredient
func (h *IngredientHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an ingredient and its batches, keeping movement history
func (h *IngredientHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddStock records incoming stock for an existing ingredient
func (h *IngredientHandler) AddStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.AddStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListBatches lists an ingredient's batches in expiry order
func (h *IngredientHandler) ListBatches(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	batches, err := h.service.ListBatches(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// AdjustBatch overrides a batch's quantity and/or expiry date
func (h *IngredientHandler) AdjustBatch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.AdjustBatch(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TotalQuantity reports the summed stock of an ingredient
func (h *IngredientHandler) TotalQuantity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.TotalQuantity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Alerts reports expiring and low stock
func (h *IngredientHandler) Alerts(c *gin.Context) {
	resp, err := h.service.Alerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CleanupExpired writes off all stock past its expiry date
func (h *IngredientHandler) CleanupExpired(c *gin.Context) {
	resp, err := h.service.CleanupExpired(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
