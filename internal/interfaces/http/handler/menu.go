package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/pantry/backend/internal/application/catalog"
)

// MenuHandler handles menu API endpoints
type MenuHandler struct {
	BaseHandler
	service *catalogapp.MenuService
}

// NewMenuHandler creates a new MenuHandler
func NewMenuHandler(service *catalogapp.MenuService) *MenuHandler {
	return &MenuHandler{service: service}
}

// RegisterRoutes registers the menu routes
func (h *MenuHandler) RegisterRoutes(rg *gin.RouterGroup) {
	menus := rg.Group("/menus")
	{
		menus.POST("", h.Create)
		menus.GET("", h.List)
		menus.GET("/:id", h.Get)
		menus.PUT("/:id", h.Update)
		menus.DELETE("/:id", h.Delete)
	}
}

// Create creates a menu with its recipe
func (h *MenuHandler) Create(c *gin.Context) {
	var req catalogapp.CreateMenuRequest
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

// List lists menus with pagination
func (h *MenuHandler) List(c *gin.Context) {
	var filter catalogapp.MenuListFilter
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

// Get retrieves a menu with its recipe
func (h *MenuHandler) Get(c *gin.Context) {
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

// Update replaces a menu's attributes and recipe
func (h *MenuHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req catalogapp.UpdateMenuRequest
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

// Delete removes a menu. Orders placed against it keep their snapshot of the
// menu name.
func (h *MenuHandler) Delete(c *gin.Context) {
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
