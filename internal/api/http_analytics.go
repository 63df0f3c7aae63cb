package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shopadmin/internal/entity"
)

// 库存预警阈值
const lowStockThreshold = 10

// GetStats 后台首页统计
func (h *HTTPHandler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	totalProducts, err := h.repo.CountProducts(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count products")
		InternalError(c, "failed to fetch stats")
		return
	}
	totalOrders, err := h.repo.CountOrders(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count orders")
		InternalError(c, "failed to fetch stats")
		return
	}
	totalCustomers, err := h.repo.CountActiveCustomers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count customers")
		InternalError(c, "failed to fetch stats")
		return
	}
	revenue, err := h.repo.MonthlyRevenue(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to compute monthly revenue")
		InternalError(c, "failed to fetch stats")
		return
	}

	c.JSON(http.StatusOK, entity.DashboardStats{
		TotalProducts:  totalProducts,
		TotalOrders:    totalOrders,
		TotalCustomers: totalCustomers,
		TotalRevenue:   revenue,
	})
}

// GetSalesAnalytics 按周期统计销售额
func (h *HTTPHandler) GetSalesAnalytics(c *gin.Context) {
	days, ok := parsePeriodDays(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)
	count, revenue, err := h.repo.SalesSince(ctx, since)
	if err != nil {
		logrus.WithError(err).Error("failed to compute sales analytics")
		InternalError(c, "failed to fetch sales analytics")
		return
	}

	analytics := entity.SalesAnalytics{
		TotalSales:   count,
		TotalRevenue: revenue,
	}
	if count > 0 {
		analytics.AverageOrderValue = revenue / float64(count)
	}

	c.JSON(http.StatusOK, analytics)
}

// GetProductAnalytics 商品分析（畅销榜、分类分布、库存预警）
func (h *HTTPHandler) GetProductAnalytics(c *gin.Context) {
	days, ok := parsePeriodDays(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)
	topProducts, err := h.repo.TopProducts(ctx, since, 10)
	if err != nil {
		logrus.WithError(err).Error("failed to compute top products")
		InternalError(c, "failed to fetch product analytics")
		return
	}
	categories, err := h.repo.ListCategoryCounts(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to compute category counts")
		InternalError(c, "failed to fetch product analytics")
		return
	}
	stockAlerts, err := h.repo.ListLowStockProducts(ctx, lowStockThreshold)
	if err != nil {
		logrus.WithError(err).Error("failed to list low stock products")
		InternalError(c, "failed to fetch product analytics")
		return
	}

	c.JSON(http.StatusOK, entity.ProductAnalytics{
		TopProducts:         topProducts,
		CategoryPerformance: categories,
		StockAlerts:         stockAlerts,
	})
}

// GetCustomerAnalytics 客户分析（新增客户、活跃客户）
func (h *HTTPHandler) GetCustomerAnalytics(c *gin.Context) {
	days, ok := parsePeriodDays(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)
	newCustomers, err := h.repo.CountCustomersSince(ctx, since)
	if err != nil {
		logrus.WithError(err).Error("failed to count new customers")
		InternalError(c, "failed to fetch customer analytics")
		return
	}
	activeCustomers, err := h.repo.CountActiveCustomers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count active customers")
		InternalError(c, "failed to fetch customer analytics")
		return
	}

	c.JSON(http.StatusOK, entity.CustomerAnalytics{
		NewCustomers:    newCustomers,
		ActiveCustomers: activeCustomers,
	})
}

// parsePeriodDays 解析 period 查询参数，形如 7d/30d/90d，默认 30 天。
func parsePeriodDays(c *gin.Context) (int, bool) {
	period := strings.TrimSpace(c.Query("period"))
	if period == "" {
		return 30, true
	}
	days, err := strconv.Atoi(strings.TrimSuffix(period, "d"))
	if err != nil || days <= 0 || days > 365 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid period, expected e.g. 7d, 30d, 90d")
		return 0, false
	}
	return days, true
}
