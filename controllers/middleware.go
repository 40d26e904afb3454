// controllers/middleware.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
	"vetclinic-backend/services"
	"vetclinic-backend/utils"
)

const userContextKey = "currentUser"

// AuthMiddleware resolves the bearer token to an identity. Every failure
// mode (missing header, malformed token, bad signature, expiry, unknown or
// deactivated user) produces the same 401 body.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		token := header
		if len(header) > 7 && strings.EqualFold(header[0:6], "bearer") {
			token = header[7:]
		}

		user, err := tokens.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin() {
			utils.RespondWithError(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// respondError maps the service error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidation(err):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUnauthenticated):
		utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrForbidden):
		utils.RespondWithError(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, apperrors.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, apperrors.ErrSlotTaken):
		utils.RespondWithError(c, http.StatusConflict, "This time slot is already booked")
	case errors.Is(err, apperrors.ErrEmailTaken):
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, apperrors.ErrChannelFailure):
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to send message")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
