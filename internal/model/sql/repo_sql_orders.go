package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"shopadmin/internal/entity"
)

// ListOrders returns paginated orders joined with the purchaser's identity.
func (r *GormRepository) ListOrders(ctx context.Context, params *entity.OrderQuery) ([]entity.OrderSummary, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbOrder{})
	if params != nil {
		if trimmed := strings.TrimSpace(params.Status); trimmed != "" {
			query = query.Where("orders.status = ?", trimmed)
		}
		if params.UserID != 0 {
			query = query.Where("orders.user_id = ?", params.UserID)
		}
		if params.DateFrom != nil {
			query = query.Where("orders.created_at >= ?", *params.DateFrom)
		}
		if params.DateTo != nil {
			query = query.Where("orders.created_at <= ?", *params.DateTo)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var page, pageSize, offset int
	if params != nil {
		page, pageSize, offset = normalisePage(&params.BaseParams)
	} else {
		page, pageSize, offset = normalisePage(nil)
	}

	var orders []entity.OrderSummary
	err := query.
		Select("orders.*, users.username AS username, users.email AS email").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").
		Offset(offset).Limit(pageSize).
		Scan(&orders).Error
	if err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return orders, meta, nil
}

// GetOrderDetail loads an order with purchaser info and item lines.
func (r *GormRepository) GetOrderDetail(ctx context.Context, id uint) (*entity.OrderDetail, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid order id")
	}

	var summary entity.OrderSummary
	err := r.db.WithContext(ctx).Model(&entity.DbOrder{}).
		Select("orders.*, users.username AS username, users.email AS email").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Where("orders.id = ?", id).
		First(&summary).Error
	if err != nil {
		return nil, err
	}

	var items []entity.OrderItemDetail
	err = r.db.WithContext(ctx).Model(&entity.DbOrderItem{}).
		Select("order_items.*, products.name AS product_name, products.image_url AS product_image").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", id).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return &entity.OrderDetail{OrderSummary: summary, Items: items}, nil
}

// UpdateOrder updates an existing order entry.
func (r *GormRepository) UpdateOrder(ctx context.Context, id uint, updates entity.OrderUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid order id")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&entity.DbOrder{}).Where("id = ?", id).Updates(updates.ToMap())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountOrders returns total order count.
func (r *GormRepository) CountOrders(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbOrder{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MonthlyRevenue sums non-cancelled order amounts for the current calendar
// month. The boundary is computed in Go so the query stays portable across
// MySQL, PostgreSQL and SQLite.
func (r *GormRepository) MonthlyRevenue(ctx context.Context) (float64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var revenue *float64
	err := r.db.WithContext(ctx).Model(&entity.DbOrder{}).
		Select("SUM(total_amount)").
		Where("created_at >= ? AND status <> ?", monthStart, entity.OrderStatusCancelled).
		Scan(&revenue).Error
	if err != nil {
		return 0, err
	}
	if revenue == nil {
		return 0, nil
	}
	return *revenue, nil
}

// SalesSince returns the count and revenue of non-cancelled orders created
// after the given time.
func (r *GormRepository) SalesSince(ctx context.Context, since time.Time) (int64, float64, error) {
	if r == nil || r.db == nil {
		return 0, 0, fmt.Errorf("repository not initialised")
	}

	base := r.db.WithContext(ctx).Model(&entity.DbOrder{}).
		Where("created_at >= ? AND status <> ?", since, entity.OrderStatusCancelled)

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, 0, err
	}

	var revenue *float64
	if err := base.Session(&gorm.Session{}).Select("SUM(total_amount)").Scan(&revenue).Error; err != nil {
		return 0, 0, err
	}
	if revenue == nil {
		return count, 0, nil
	}
	return count, *revenue, nil
}

// TopProducts ranks products by units sold in non-cancelled orders created
// after the given time.
func (r *GormRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]entity.TopProduct, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if limit <= 0 {
		limit = 10
	}

	var top []entity.TopProduct
	err := r.db.WithContext(ctx).Model(&entity.DbOrderItem{}).
		Select("order_items.product_id AS product_id, products.name AS product_name, SUM(order_items.quantity) AS units_sold").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Joins("INNER JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.status <> ?", since, entity.OrderStatusCancelled).
		Group("order_items.product_id, products.name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	return top, nil
}
