package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/poscore/transaction-api/internal/application/service"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/request"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/response"
)

// ItemHandler handles item master data requests
type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Create handles creating an item
func (h *ItemHandler) Create(c *gin.Context) {
	var req request.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), &service.CreateItemInput{
		Code:         req.Code,
		Name:         req.Name,
		Price:        req.Price,
		TaxRate:      req.TaxRate,
		TaxMode:      enum.TaxMode(req.TaxMode),
		RoundingMode: enum.RoundingMode(req.RoundingMode),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item created successfully", item)
}

// List handles listing items
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.itemService.ListItems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Items retrieved successfully", items)
}

// Get handles retrieving an item by code
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.itemService.GetItem(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item retrieved successfully", item)
}

// Update handles updating an item
func (h *ItemHandler) Update(c *gin.Context) {
	var req request.UpdateItemMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := &service.UpdateItemMasterInput{
		Name:    req.Name,
		Price:   req.Price,
		TaxRate: req.TaxRate,
	}
	if req.TaxMode != nil {
		mode := enum.TaxMode(*req.TaxMode)
		input.TaxMode = &mode
	}
	if req.RoundingMode != nil {
		mode := enum.RoundingMode(*req.RoundingMode)
		input.RoundingMode = &mode
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), c.Param("code"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated successfully", item)
}

// Delete handles removing an item
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.itemService.DeleteItem(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
