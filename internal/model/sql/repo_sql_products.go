package sql

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"shopadmin/internal/entity"
)

// CreateProduct persists a new product record.
func (r *GormRepository) CreateProduct(ctx context.Context, product *entity.DbProduct) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if product == nil {
		return fmt.Errorf("product is nil")
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// UpdateProduct updates an existing product entry.
func (r *GormRepository) UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid product id")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&entity.DbProduct{}).Where("id = ?", id).Updates(updates.ToMap())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetProduct loads a product by ID.
func (r *GormRepository) GetProduct(ctx context.Context, id uint) (*entity.DbProduct, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid product id")
	}
	var product entity.DbProduct
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns paginated products matching the query filters.
func (r *GormRepository) ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbProduct{})
	if params != nil {
		if trimmed := strings.TrimSpace(params.Category); trimmed != "" {
			query = query.Where("category = ?", trimmed)
		}
		if trimmed := strings.TrimSpace(params.Status); trimmed != "" {
			query = query.Where("status = ?", trimmed)
		}
		if search := strings.TrimSpace(params.Search); search != "" {
			kw := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", kw, kw, kw)
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

	var products []entity.DbProduct
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return products, meta, nil
}

// DeleteProduct removes a product by ID.
func (r *GormRepository) DeleteProduct(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid product id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbProduct{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkUpdateProducts applies the same updates to all products in ids and
// returns the number of affected rows.
func (r *GormRepository) BulkUpdateProducts(ctx context.Context, ids []uint, updates entity.ProductUpdates) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("no product ids")
	}
	if updates.IsEmpty() {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&entity.DbProduct{}).Where("id IN ?", ids).Updates(updates.ToMap())
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// BulkDeleteProducts removes all products in ids and returns the number of
// deleted rows.
func (r *GormRepository) BulkDeleteProducts(ctx context.Context, ids []uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("no product ids")
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&entity.DbProduct{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountProducts returns total product count.
func (r *GormRepository) CountProducts(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbProduct{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListLowStockProducts returns products at or below the stock threshold,
// lowest stock first. Out-of-stock items are included.
func (r *GormRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]entity.DbProduct, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if threshold < 0 {
		threshold = 0
	}
	var products []entity.DbProduct
	err := r.db.WithContext(ctx).
		Where("stock_quantity <= ? AND status <> ?", threshold, entity.ProductStatusInactive).
		Order("stock_quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategoryCounts groups active products by category.
func (r *GormRepository) ListCategoryCounts(ctx context.Context) ([]entity.CategoryCount, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var counts []entity.CategoryCount
	err := r.db.WithContext(ctx).Model(&entity.DbProduct{}).
		Select("category, COUNT(*) as count").
		Where("status = ?", entity.ProductStatusActive).
		Group("category").
		Order("category").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
