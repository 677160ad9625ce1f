package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/application/service"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/request"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/response"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Create handles opening a new cart
func (h *CartHandler) Create(c *gin.Context) {
	terminalID := GetTerminalID(c)
	if terminalID == nil {
		response.Unauthorized(c, "Terminal not authenticated")
		return
	}

	var req request.CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.cartService.CreateCart(c.Request.Context(), &service.CreateCartInput{
		StoreCode:    GetStoreCode(c),
		TerminalID:   *terminalID,
		StaffID:      GetStaffID(c),
		BusinessDate: req.BusinessDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cart created successfully", cart)
}

// Get handles retrieving a cart
func (h *CartHandler) Get(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), cartID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart retrieved successfully", cart)
}

// AddItem handles adding a line item
func (h *CartHandler) AddItem(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), cartID, &service.AddItemInput{
		ItemCode:  req.ItemCode,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added successfully", cart)
}

// UpdateItem handles changing a line item
func (h *CartHandler) UpdateItem(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	lineNo, err := strconv.Atoi(c.Param("lineNo"))
	if err != nil {
		response.BadRequest(c, "Invalid line number")
		return
	}

	var req request.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), cartID, lineNo, &service.UpdateItemInput{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", cart)
}

// RemoveItem handles cancelling a line item
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	lineNo, err := strconv.Atoi(c.Param("lineNo"))
	if err != nil {
		response.BadRequest(c, "Invalid line number")
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), cartID, lineNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed successfully", cart)
}

// AddDiscount handles applying a discount
func (h *CartHandler) AddDiscount(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	var req request.AddDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.cartService.AddDiscount(c.Request.Context(), cartID, &service.AddDiscountInput{
		LineNo:      req.LineNo,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount added successfully", cart)
}

// Subtotal handles closing item entry
func (h *CartHandler) Subtotal(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Subtotal(c.Request.Context(), cartID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Subtotal computed successfully", cart)
}

// Resume handles reopening item entry
func (h *CartHandler) Resume(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Resume(c.Request.Context(), cartID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item entry resumed", cart)
}

// AddPayment handles applying a payment
func (h *CartHandler) AddPayment(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	var req request.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.cartService.AddPayment(c.Request.Context(), cartID, &service.AddPaymentInput{
		MethodCode: req.MethodCode,
		Amount:     req.Amount,
		Deposit:    req.Deposit,
		Detail:     req.Detail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment added successfully", cart)
}

// CancelPayment handles reversing a payment line
func (h *CartHandler) CancelPayment(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}
	seqNo, err := strconv.Atoi(c.Param("seqNo"))
	if err != nil {
		response.BadRequest(c, "Invalid payment sequence number")
		return
	}

	cart, err := h.cartService.CancelPayment(c.Request.Context(), cartID, seqNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment cancelled successfully", cart)
}

// Bill handles completing the cart
func (h *CartHandler) Bill(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	tx, err := h.cartService.Bill(c.Request.Context(), cartID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction completed successfully", tx)
}

// Cancel handles abandoning the cart
func (h *CartHandler) Cancel(c *gin.Context) {
	cartID, ok := h.cartID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Cancel(c.Request.Context(), cartID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart cancelled successfully", cart)
}

func (h *CartHandler) cartID(c *gin.Context) (uuid.UUID, bool) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid cart ID")
		return uuid.Nil, false
	}
	return cartID, true
}
