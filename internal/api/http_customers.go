package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shopadmin/internal/entity"
)

// ListCustomers 客户列表（只含普通用户账号）
func (h *HTTPHandler) ListCustomers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	// 客户视图固定只看 user 角色
	query.Role = entity.UserRoleUser
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list customers")
		InternalError(c, "failed to fetch customers")
		return
	}

	customers := make([]entity.UserSummary, 0, len(users))
	for i := range users {
		customers = append(customers, makeUserSummary(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"meta":      meta,
	})
}

// GetCustomer 客户详情
func (h *HTTPHandler) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeCustomerNotFound, "customer not found")
			return
		}
		logrus.WithError(err).Error("failed to load customer")
		InternalError(c, "failed to fetch customer")
		return
	}
	if user.Role != entity.UserRoleUser {
		NotFound(c, ErrCodeCustomerNotFound, "customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": makeUserSummary(user)})
}

// UpdateCustomerStatus 启用或停用客户账号
func (h *HTTPHandler) UpdateCustomerStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	if req.IsActive == nil {
		MissingField(c, "is_active")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeCustomerNotFound, "customer not found")
			return
		}
		logrus.WithError(err).Error("failed to load customer for update")
		InternalError(c, "failed to update customer")
		return
	}
	if user.Role != entity.UserRoleUser {
		NotFound(c, ErrCodeCustomerNotFound, "customer not found")
		return
	}

	if err := h.repo.UpdateUser(ctx, id, entity.UserUpdates{IsActive: req.IsActive}); err != nil {
		logrus.WithError(err).Error("failed to update customer status")
		InternalError(c, "failed to update customer")
		return
	}

	user.IsActive = *req.IsActive
	c.JSON(http.StatusOK, gin.H{
		"message":  "Customer status updated successfully",
		"customer": makeUserSummary(user),
	})
}
