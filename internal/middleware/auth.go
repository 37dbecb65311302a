package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domain "pos-account-service/internal/domain/account"
	"pos-account-service/pkg/utils"
)

const (
	AccountIDKey = "accountID"
	AccountKey   = "account"
)

// AuthMiddleware resolves the bearer token against the token store and
// loads the owning account into the context. The token is opaque; its
// validity is exactly its presence in the store.
func AuthMiddleware(tokens domain.TokenRepository, accounts domain.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		authToken, err := tokens.GetByToken(c.Request.Context(), token)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid token.")
			c.Abort()
			return
		}

		acc, err := accounts.GetByID(c.Request.Context(), authToken.AccountID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid token.")
			c.Abort()
			return
		}

		c.Set(AccountIDKey, acc.ID)
		c.Set(AccountKey, acc)

		c.Next()
	}
}

// BearerToken extracts the opaque token from the Authorization header.
// Both "Bearer <token>" and the legacy "Token <token>" scheme are
// accepted.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if parts[0] != "Bearer" && parts[0] != "Token" {
		return ""
	}
	return parts[1]
}

// AccountFromContext returns the account loaded by AuthMiddleware.
func AccountFromContext(c *gin.Context) (*domain.Account, bool) {
	value, exists := c.Get(AccountKey)
	if !exists {
		return nil, false
	}
	acc, ok := value.(*domain.Account)
	return acc, ok
}

// VerifiedOnly gates endpoints that require a verified account. Login
// itself is never gated; this guard protects specific capabilities.
func VerifiedOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := AccountFromContext(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		if !acc.IsVerified {
			utils.ErrorResponse(c, http.StatusForbidden, "User account is not verified")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RoleMiddleware restricts a route group to the given roles.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := AccountFromContext(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		for _, role := range allowedRoles {
			if acc.Role == role {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func ManagerOnly() gin.HandlerFunc {
	return RoleMiddleware(domain.RoleManager)
}
