package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopadmin/internal/entity"
)

// Signup 用户注册
func (h *HTTPHandler) Signup(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var req entity.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Signup(ctx, req)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.SignupResponse{
		Message:  "Registration successful",
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login 用户登录
func (h *HTTPHandler) Login(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	token, expiresAt, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt,
		User: entity.LoginUser{
			UserID:        user.ID,
			Username:      user.Username,
			Email:         user.Email,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			EmailVerified: user.EmailVerified,
		},
	})
}

// Profile 获取当前用户资料
func (h *HTTPHandler) Profile(c *gin.Context) {
	principal := CurrentUser(c)
	if principal == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.authService.Profile(ctx, principal.UserID)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// UpdateProfile 更新当前用户联系信息
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	principal := CurrentUser(c)
	if principal == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req entity.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.UpdateProfile(ctx, principal.UserID, req); err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Personal information updated successfully"})
}

// ChangePassword 修改当前用户密码
func (h *HTTPHandler) ChangePassword(c *gin.Context) {
	principal := CurrentUser(c)
	if principal == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req entity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.ChangePassword(ctx, principal.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// IssueAPIToken 签发长期有效的集成令牌
func (h *HTTPHandler) IssueAPIToken(c *gin.Context) {
	principal := CurrentUser(c)
	if principal == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	token, expiresAt, err := h.authService.IssueAPIToken(ctx, principal.UserID)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.APITokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
