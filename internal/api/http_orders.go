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

// ListOrders 订单列表（带买家信息）
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	var query entity.OrderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	if query.Status != "" && !entity.ValidOrderStatus(query.Status) {
		BadRequest(c, ErrCodeInvalidStatus, "invalid order status")
		return
	}
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

	orders, meta, err := h.repo.ListOrders(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list orders")
		InternalError(c, "failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, entity.OrderListResponse{
		Orders: orders,
		Meta:   meta,
	})
}

// GetOrder 订单详情（含明细行）
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.repo.GetOrderDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeOrderNotFound, "order not found")
			return
		}
		logrus.WithError(err).Error("failed to load order")
		InternalError(c, "failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": detail})
}

// UpdateOrderStatus 更新订单状态
func (h *HTTPHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.OrderStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	if req.Status == "" {
		MissingField(c, "status")
		return
	}
	if !entity.ValidOrderStatus(req.Status) {
		BadRequest(c, ErrCodeInvalidStatus, "invalid order status")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.UpdateOrder(ctx, id, entity.OrderUpdates{Status: &req.Status}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeOrderNotFound, "order not found")
			return
		}
		logrus.WithError(err).Error("failed to update order status")
		InternalError(c, "failed to update order")
		return
	}

	detail, err := h.repo.GetOrderDetail(ctx, id)
	if err != nil {
		logrus.WithError(err).Error("failed to reload order after update")
		InternalError(c, "failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   detail,
	})
}
