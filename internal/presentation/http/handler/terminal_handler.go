package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/application/service"
	"github.com/poscore/transaction-api/internal/domain/entity"
	infraRepo "github.com/poscore/transaction-api/internal/infrastructure/repository"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/request"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/response"
)

// TerminalHandler handles terminal administration requests
type TerminalHandler struct {
	terminalService *service.TerminalService
}

// NewTerminalHandler creates a new terminal handler
func NewTerminalHandler(terminalService *service.TerminalService) *TerminalHandler {
	return &TerminalHandler{terminalService: terminalService}
}

// Register handles registering a terminal. The plain API key appears in this
// response and nowhere else.
func (h *TerminalHandler) Register(c *gin.Context) {
	var req request.RegisterTerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		response.BadRequest(c, "Invalid tenant ID")
		return
	}

	// The route is unauthenticated, so the tenant scope is established here
	// rather than by the auth middleware.
	ctx := infraRepo.WithTenant(c.Request.Context(), tenantID)
	terminal, apiKey, err := h.terminalService.RegisterTerminal(ctx, &service.RegisterTerminalInput{
		StoreCode:  req.StoreCode,
		TerminalNo: req.TerminalNo,
		Name:       req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Terminal registered successfully", gin.H{
		"terminal": terminal,
		"api_key":  apiKey,
	})
}

// List handles listing terminals
func (h *TerminalHandler) List(c *gin.Context) {
	terminals, err := h.terminalService.ListTerminals(c.Request.Context(), c.Query("store_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Terminals retrieved successfully", terminals)
}

// Get handles retrieving a terminal
func (h *TerminalHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid terminal ID")
		return
	}

	terminal, err := h.terminalService.GetTerminal(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Terminal retrieved successfully", terminal)
}

// Delete handles removing a terminal
func (h *TerminalHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid terminal ID")
		return
	}

	if err := h.terminalService.DeleteTerminal(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Counters handles reading the terminal's counter values
func (h *TerminalHandler) Counters(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid terminal ID")
		return
	}

	counters := gin.H{}
	for _, name := range []string{entity.CounterTransactionNo, entity.CounterReceiptNo, entity.CounterBusiness} {
		value, err := h.terminalService.CounterValue(c.Request.Context(), id, name)
		if err != nil {
			response.Error(c, err)
			return
		}
		counters[name] = value
	}
	response.OK(c, "Counters retrieved successfully", counters)
}

// CloseBusiness handles advancing the terminal's business counter at day close
func (h *TerminalHandler) CloseBusiness(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid terminal ID")
		return
	}

	value, err := h.terminalService.NextBusinessNo(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Business counter advanced", gin.H{"business_no": value})
}
