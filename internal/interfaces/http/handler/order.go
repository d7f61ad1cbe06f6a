package handler

import (
	"github.com/gin-gonic/gin"

	orderingapp "github.com/pantry/backend/internal/application/ordering"
)

// OrderHandler handles order API endpoints
type OrderHandler struct {
	BaseHandler
	service *orderingapp.OrderService
	// placeMiddleware runs only on order placement, e.g. idempotency checks
	placeMiddleware []gin.HandlerFunc
}

// NewOrderHandler creates a new OrderHandler. placeMiddleware is applied to
// the placement route only.
func NewOrderHandler(service *orderingapp.OrderService, placeMiddleware ...gin.HandlerFunc) *OrderHandler {
	return &OrderHandler{
		service:         service,
		placeMiddleware: placeMiddleware,
	}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		place := append([]gin.HandlerFunc{}, h.placeMiddleware...)
		place = append(place, h.Place)
		orders.POST("", place...)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.DELETE("/:id", h.Cancel)
	}
}

// Place fulfills an order, deducting stock batch by batch in expiry order
func (h *OrderHandler) Place(c *gin.Context) {
	var req orderingapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Place(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists orders with pagination and filters
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderingapp.OrderListFilter
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

// Get retrieves an order with its usage lines
func (h *OrderHandler) Get(c *gin.Context) {
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

// Cancel returns an order's deductions to their batches and removes the
// order; the cancellation movements remain as the audit record
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
