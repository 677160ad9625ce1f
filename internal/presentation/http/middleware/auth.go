package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/repository"
	infraRepo "github.com/poscore/transaction-api/internal/infrastructure/repository"
	"github.com/poscore/transaction-api/internal/presentation/http/dto/response"
	"github.com/poscore/transaction-api/pkg/utils"
)

// Context keys set by the auth middleware
const (
	TenantIDContextKey   = "tenant_id"
	StoreCodeContextKey  = "store_code"
	TerminalIDContextKey = "terminal_id"
	StaffIDContextKey    = "staff_id"
)

// AuthMiddleware authenticates a terminal either by a bearer session token or
// by the terminal's API key. The resolved tenant is attached to the request
// context so every repository call downstream is tenant-scoped.
func AuthMiddleware(jwtManager *utils.JWTManager, terminalRepo repository.TerminalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(c, "Invalid authorization header format")
				c.Abort()
				return
			}

			claims, err := jwtManager.ValidateTerminalToken(parts[1])
			if err != nil {
				response.Unauthorized(c, "Invalid or expired token")
				c.Abort()
				return
			}

			setTerminalContext(c, claims.TenantID, claims.StoreCode, claims.TerminalID, claims.StaffID)
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-Api-Key")
		terminalIDStr := c.GetHeader("X-Terminal-Id")
		if apiKey == "" || terminalIDStr == "" {
			response.Unauthorized(c, "Authorization header or API key is required")
			c.Abort()
			return
		}

		terminalID, err := uuid.Parse(terminalIDStr)
		if err != nil {
			response.Unauthorized(c, "Invalid terminal ID")
			c.Abort()
			return
		}

		terminal, err := terminalRepo.FindForAuth(c.Request.Context(), terminalID)
		if err != nil || terminal == nil || !utils.CheckAPIKey(terminal.APIKeyHash, apiKey) {
			response.Unauthorized(c, "Invalid API key")
			c.Abort()
			return
		}

		staffID := c.GetHeader("X-Staff-Id")
		setTerminalContext(c, terminal.TenantID, terminal.StoreCode, terminal.ID, staffID)
		c.Next()
	}
}

func setTerminalContext(c *gin.Context, tenantID uuid.UUID, storeCode string, terminalID uuid.UUID, staffID string) {
	c.Set(TenantIDContextKey, tenantID)
	c.Set(StoreCodeContextKey, storeCode)
	c.Set(TerminalIDContextKey, terminalID)
	c.Set(StaffIDContextKey, staffID)
	c.Request = c.Request.WithContext(infraRepo.WithTenant(c.Request.Context(), tenantID))
}
