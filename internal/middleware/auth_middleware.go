package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/pkg/auth"
)

// Context keys set by JWTAuth.
const (
	ContextUserID     = "userID"
	ContextUsername   = "username"
	ContextRole       = "role"
	ContextDepartment = "department"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth middleware for JWT token validation. Browsers cannot set headers on websocket
// upgrades, so a "token" query parameter is accepted as well.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			details := "Authorization header missing"
			if errors.Is(err, auth.ErrInvalidFormat) {
				details = "Authorization header must be 'Bearer <token>'"
			}
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails(details)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}
			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, models.RoleType(claims.Role))
		c.Set(ContextDepartment, claims.Department)

		c.Next()
	}
}

var errNoToken = errors.New("no token presented")

func tokenFromRequest(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractBearerToken(strings.Trim(header, "\"'"))
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", errNoToken
}

// RoleRequired lets the request through when the authenticated user holds any of roles.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("User role not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		if !actor.Is(roles...) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// GetActor returns the authenticated caller stored by JWTAuth.
func GetActor(c *gin.Context) (services.Actor, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return services.Actor{}, false
	}
	id, ok := userID.(int64)
	if !ok {
		return services.Actor{}, false
	}
	role, _ := c.Get(ContextRole)
	roleType, _ := role.(models.RoleType)
	return services.Actor{
		UserID:     id,
		Username:   c.GetString(ContextUsername),
		Role:       roleType,
		Department: c.GetString(ContextDepartment),
	}, true
}
