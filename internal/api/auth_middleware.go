package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shopadmin/internal/auth"
	"shopadmin/internal/entity"
)

const (
	currentUserContextKey  = "current-user"
	currentAdminContextKey = "current-admin"
)

// Principal 存储请求上下文中的认证用户信息
type Principal struct {
	UserID   uint
	Username string
	Email    string
}

// AdminPrincipal 在 Principal 基础上附带角色，仅管理员网关通过后设置
type AdminPrincipal struct {
	Principal
	Role string
}

// AuthMiddleware JWT 认证中间件：校验令牌后回读实时用户状态，
// 停用的账户即使持有未过期令牌也会被拒绝。
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "access token is required",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "invalid authorization header format",
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "access token is required",
			})
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeTokenExpired,
					Message: "token expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeInvalidToken,
				Message: "invalid token",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeUserNotFound,
					Message: "invalid token - user not found",
				})
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "authentication failed",
			})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeUserDisabled,
				Message: "account is deactivated",
			})
			return
		}

		principal := &Principal{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		}

		c.Set(currentUserContextKey, principal)
		c.Next()
	}
}

// RequireAdmin 管理员权限守卫中间件：要求上游已设置 Principal，
// 重新读取用户并校验角色。
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentUser(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "authentication required",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeUserNotFound,
					Message: "user not found",
				})
				return
			}
			logrus.WithError(err).WithField("user_id", principal.UserID).Error("failed to load user for admin check")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "authorization check failed",
			})
			return
		}

		if user.Role != entity.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "access denied, admin privileges required",
			})
			return
		}

		admin := &AdminPrincipal{
			Principal: Principal{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
			},
			Role: user.Role,
		}

		c.Set(currentAdminContextKey, admin)
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *Principal {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*Principal)
	if !ok {
		return nil
	}
	return principal
}

// CurrentAdmin 从上下文获取当前管理员
func CurrentAdmin(c *gin.Context) *AdminPrincipal {
	value, exists := c.Get(currentAdminContextKey)
	if !exists {
		return nil
	}
	admin, ok := value.(*AdminPrincipal)
	if !ok {
		return nil
	}
	return admin
}
