package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/poscore/transaction-api/internal/application/service"
	"github.com/poscore/transaction-api/internal/domain/entity"
	"github.com/poscore/transaction-api/internal/domain/repository"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/request"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/response"
	"github.com/poscore/transaction-api/pkg/pagination"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// List handles listing transactions for the authenticated terminal
func (h *TransactionHandler) List(c *gin.Context) {
	terminalID := GetTerminalID(c)
	if terminalID == nil {
		response.Unauthorized(c, "Terminal not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()

	filter := &repository.TransactionFilterParams{
		Pagination:   params,
		StoreCode:    GetStoreCode(c),
		TerminalID:   terminalID,
		BusinessDate: c.Query("business_date"),
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Transactions retrieved successfully", result)
}

// Get handles retrieving one transaction by number
func (h *TransactionHandler) Get(c *gin.Context) {
	terminalID := GetTerminalID(c)
	if terminalID == nil {
		response.Unauthorized(c, "Terminal not authenticated")
		return
	}
	transactionNo, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid transaction number")
		return
	}

	tx, status, err := h.transactionService.GetTransaction(c.Request.Context(), GetStoreCode(c), *terminalID, transactionNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", gin.H{
		"transaction": tx,
		"status":      status,
	})
}

// Void handles voiding a transaction
func (h *TransactionHandler) Void(c *gin.Context) {
	h.reverse(c, h.transactionService.VoidTransaction, "Transaction voided successfully")
}

// Return handles returning a transaction
func (h *TransactionHandler) Return(c *gin.Context) {
	h.reverse(c, h.transactionService.ReturnTransaction, "Transaction returned successfully")
}

func (h *TransactionHandler) reverse(c *gin.Context, op func(context.Context, *service.ReverseInput) (*entity.Transaction, error), message string) {
	terminalID := GetTerminalID(c)
	if terminalID == nil {
		response.Unauthorized(c, "Terminal not authenticated")
		return
	}
	transactionNo, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid transaction number")
		return
	}

	var req request.ReverseTransactionRequest
	_ = c.ShouldBindJSON(&req)
	staffID := req.StaffID
	if staffID == "" {
		staffID = GetStaffID(c)
	}

	counterTx, err := op(c.Request.Context(), &service.ReverseInput{
		StoreCode:     GetStoreCode(c),
		TerminalID:    *terminalID,
		TransactionNo: transactionNo,
		StaffID:       staffID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, counterTx)
}
