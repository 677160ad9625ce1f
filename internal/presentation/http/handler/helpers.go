package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/presentation/http/middleware"
)

// GetTerminalID extracts the authenticated terminal ID from the Gin context
func GetTerminalID(c *gin.Context) *uuid.UUID {
	val, exists := c.Get(middleware.TerminalIDContextKey)
	if !exists {
		return nil
	}
	terminalID, ok := val.(uuid.UUID)
	if !ok {
		return nil
	}
	return &terminalID
}

// GetStoreCode extracts the authenticated store code from the Gin context
func GetStoreCode(c *gin.Context) string {
	val, exists := c.Get(middleware.StoreCodeContextKey)
	if !exists {
		return ""
	}
	storeCode, _ := val.(string)
	return storeCode
}

// GetStaffID extracts the staff ID from the Gin context
func GetStaffID(c *gin.Context) string {
	val, exists := c.Get(middleware.StaffIDContextKey)
	if !exists {
		return ""
	}
	staffID, _ := val.(string)
	return staffID
}
