package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/application/service"
	"github.com/poscore/transaction-api/internal/domain/enum"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/request"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/response"
)

// DeliveryHandler handles the subscriber acknowledgment callback and delivery
// status queries
type DeliveryHandler struct {
	deliveryService *service.DeliveryService
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(deliveryService *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// Update handles a subscriber marking its delivery entry
func (h *DeliveryHandler) Update(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "Invalid event ID")
		return
	}

	var req request.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.deliveryService.UpdateStatus(c.Request.Context(), eventID, req.Service, enum.DeliveryState(req.State)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Delivery status updated", nil)
}

// Get handles retrieving the delivery record for one event
func (h *DeliveryHandler) Get(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "Invalid event ID")
		return
	}

	status, err := h.deliveryService.GetStatus(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Delivery status retrieved", status)
}
