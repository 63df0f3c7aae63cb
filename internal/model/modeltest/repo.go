// Package modeltest provides an in-memory Repository used by unit tests.
package modeltest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"shopadmin/internal/entity"
	"shopadmin/internal/model"
)

// FakeRepository keeps everything in maps and mimics the error contract of the
// SQL implementation, including gorm.ErrRecordNotFound and
// gorm.ErrDuplicatedKey for unique username/email collisions.
type FakeRepository struct {
	mu sync.Mutex

	users    map[uint]*entity.DbUser
	products map[uint]*entity.DbProduct
	orders   map[uint]*entity.DbOrder
	items    []entity.DbOrderItem

	nextUserID    uint
	nextProductID uint

	// ForcedErr, when set, is returned by every method.
	ForcedErr error
}

// NewFakeRepository creates an empty in-memory repository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		users:         make(map[uint]*entity.DbUser),
		products:      make(map[uint]*entity.DbProduct),
		orders:        make(map[uint]*entity.DbOrder),
		nextUserID:    1,
		nextProductID: 1,
	}
}

var _ model.Repository = (*FakeRepository)(nil)

func (f *FakeRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	for _, existing := range f.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextUserID
	f.nextUserID++
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *FakeRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if updates.FirstName != nil {
		user.FirstName = *updates.FirstName
	}
	if updates.LastName != nil {
		user.LastName = *updates.LastName
	}
	if updates.Phone != nil {
		user.Phone = *updates.Phone
	}
	if updates.Role != nil {
		user.Role = *updates.Role
	}
	if updates.PasswordHash != nil {
		user.PasswordHash = *updates.PasswordHash
	}
	if updates.IsActive != nil {
		user.IsActive = *updates.IsActive
	}
	if updates.EmailVerified != nil {
		user.EmailVerified = *updates.EmailVerified
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *FakeRepository) UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error {
	hash := passwordHash
	return f.UpdateUser(ctx, id, entity.UserUpdates{PasswordHash: &hash})
}

func (f *FakeRepository) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *FakeRepository) GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	for _, user := range f.users {
		if strings.EqualFold(user.Username, username) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *FakeRepository) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *FakeRepository) GetUserPasswordHash(ctx context.Context, id uint) (string, error) {
	user, err := f.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

func (f *FakeRepository) ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, nil, f.ForcedErr
	}
	var matched []entity.DbUser
	for _, user := range f.users {
		if params != nil && params.Role != "" && user.Role != params.Role {
			continue
		}
		if params != nil && params.Keyword != "" {
			keyword := strings.ToLower(params.Keyword)
			if !strings.Contains(strings.ToLower(user.Username), keyword) &&
				!strings.Contains(strings.ToLower(user.Email), keyword) {
				continue
			}
		}
		matched = append(matched, *user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	meta := &entity.Meta{Page: 1, PageSize: int64(len(matched)), Total: int64(len(matched))}
	return matched, meta, nil
}

func (f *FakeRepository) DeleteUser(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *FakeRepository) CountUsers(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), f.ForcedErr
}

func (f *FakeRepository) CountActiveCustomers(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return 0, f.ForcedErr
	}
	var count int64
	for _, user := range f.users {
		if user.Role == entity.UserRoleUser && user.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *FakeRepository) CountCustomersSince(ctx context.Context, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return 0, f.ForcedErr
	}
	var count int64
	for _, user := range f.users {
		if user.Role == entity.UserRoleUser && !user.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *FakeRepository) CreateProduct(ctx context.Context, product *entity.DbProduct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	for _, existing := range f.products {
		if strings.EqualFold(existing.Name, product.Name) {
			return gorm.ErrDuplicatedKey
		}
	}
	product.ID = f.nextProductID
	f.nextProductID++
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	clone := *product
	f.products[product.ID] = &clone
	return nil
}

func (f *FakeRepository) UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	product, ok := f.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	applyProductUpdates(product, updates)
	product.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *FakeRepository) GetProduct(ctx context.Context, id uint) (*entity.DbProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (f *FakeRepository) ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, nil, f.ForcedErr
	}
	var matched []entity.DbProduct
	for _, product := range f.products {
		if params != nil && params.Category != "" && product.Category != params.Category {
			continue
		}
		if params != nil && params.Status != "" && product.Status != params.Status {
			continue
		}
		matched = append(matched, *product)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	meta := &entity.Meta{Page: 1, PageSize: int64(len(matched)), Total: int64(len(matched))}
	return matched, meta, nil
}

func (f *FakeRepository) DeleteProduct(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	if _, ok := f.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *FakeRepository) BulkUpdateProducts(ctx context.Context, ids []uint, updates entity.ProductUpdates) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return 0, f.ForcedErr
	}
	var affected int64
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			applyProductUpdates(product, updates)
			affected++
		}
	}
	return affected, nil
}

func (f *FakeRepository) BulkDeleteProducts(ctx context.Context, ids []uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return 0, f.ForcedErr
	}
	var affected int64
	for _, id := range ids {
		if _, ok := f.products[id]; ok {
			delete(f.products, id)
			affected++
		}
	}
	return affected, nil
}

func (f *FakeRepository) CountProducts(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.products)), f.ForcedErr
}

func (f *FakeRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]entity.DbProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	var matched []entity.DbProduct
	for _, product := range f.products {
		if product.StockQuantity <= threshold && product.Status != entity.ProductStatusInactive {
			matched = append(matched, *product)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StockQuantity < matched[j].StockQuantity })
	return matched, nil
}

func (f *FakeRepository) ListCategoryCounts(ctx context.Context) ([]entity.CategoryCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	counts := make(map[string]int64)
	for _, product := range f.products {
		if product.Status == entity.ProductStatusActive {
			counts[product.Category]++
		}
	}
	result := make([]entity.CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, entity.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

func (f *FakeRepository) ListOrders(ctx context.Context, params *entity.OrderQuery) ([]entity.OrderSummary, *entity.Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, nil, f.ForcedErr
	}
	var matched []entity.OrderSummary
	for _, order := range f.orders {
		if params != nil && params.Status != "" && order.Status != params.Status {
			continue
		}
		if params != nil && params.UserID != 0 && order.UserID != params.UserID {
			continue
		}
		matched = append(matched, f.orderSummaryLocked(order))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	meta := &entity.Meta{Page: 1, PageSize: int64(len(matched)), Total: int64(len(matched))}
	return matched, meta, nil
}

func (f *FakeRepository) GetOrderDetail(ctx context.Context, id uint) (*entity.OrderDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	detail := &entity.OrderDetail{OrderSummary: f.orderSummaryLocked(order)}
	for _, item := range f.items {
		if item.OrderID == id {
			itemDetail := entity.OrderItemDetail{DbOrderItem: item}
			if product, ok := f.products[item.ProductID]; ok {
				itemDetail.ProductName = product.Name
				itemDetail.ProductImage = product.ImageURL
			}
			detail.Items = append(detail.Items, itemDetail)
		}
	}
	return detail, nil
}

func (f *FakeRepository) UpdateOrder(ctx context.Context, id uint, updates entity.OrderUpdates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return f.ForcedErr
	}
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if updates.Status != nil {
		order.Status = *updates.Status
	}
	if updates.PaymentStatus != nil {
		order.PaymentStatus = *updates.PaymentStatus
	}
	if updates.Notes != nil {
		order.Notes = *updates.Notes
	}
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *FakeRepository) CountOrders(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.orders)), f.ForcedErr
}

func (f *FakeRepository) MonthlyRevenue(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return 0, f.ForcedErr
	}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var revenue float64
	for _, order := range f.orders {
		if order.Status != entity.OrderStatusCancelled && !order.CreatedAt.Before(monthStart) {
			revenue += order.TotalAmount
		}
	}
	return revenue, nil
}

func (f *FakeRepository) SalesSince(ctx context.Context, since time.Time) (int64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return 0, 0, f.ForcedErr
	}
	var count int64
	var revenue float64
	for _, order := range f.orders {
		if order.Status != entity.OrderStatusCancelled && !order.CreatedAt.Before(since) {
			count++
			revenue += order.TotalAmount
		}
	}
	return count, revenue, nil
}

func (f *FakeRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]entity.TopProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ForcedErr != nil {
		return nil, f.ForcedErr
	}
	sold := make(map[uint]int64)
	for _, item := range f.items {
		order, ok := f.orders[item.OrderID]
		if !ok || order.Status == entity.OrderStatusCancelled || order.CreatedAt.Before(since) {
			continue
		}
		sold[item.ProductID] += int64(item.Quantity)
	}
	result := make([]entity.TopProduct, 0, len(sold))
	for productID, units := range sold {
		top := entity.TopProduct{ProductID: productID, UnitsSold: units}
		if product, ok := f.products[productID]; ok {
			top.ProductName = product.Name
		}
		result = append(result, top)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UnitsSold > result[j].UnitsSold })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// AddOrder seeds an order with items for analytics and order handler tests.
func (f *FakeRepository) AddOrder(order entity.DbOrder, items ...entity.DbOrderItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := order
	f.orders[order.ID] = &clone
	for _, item := range items {
		item.OrderID = order.ID
		f.items = append(f.items, item)
	}
}

func (f *FakeRepository) orderSummaryLocked(order *entity.DbOrder) entity.OrderSummary {
	summary := entity.OrderSummary{DbOrder: *order}
	if user, ok := f.users[order.UserID]; ok {
		summary.Username = user.Username
		summary.Email = user.Email
	}
	return summary
}

func applyProductUpdates(product *entity.DbProduct, updates entity.ProductUpdates) {
	if updates.Name != nil {
		product.Name = *updates.Name
	}
	if updates.ImageURL != nil {
		product.ImageURL = *updates.ImageURL
	}
	if updates.Category != nil {
		product.Category = *updates.Category
	}
	if updates.Subcategory != nil {
		product.Subcategory = *updates.Subcategory
	}
	if updates.Description != nil {
		product.Description = *updates.Description
	}
	if updates.Price != nil {
		product.Price = *updates.Price
	}
	if updates.IsNewest != nil {
		product.IsNewest = *updates.IsNewest
	}
	if updates.IsPopular != nil {
		product.IsPopular = *updates.IsPopular
	}
	if updates.DiscountPercent != nil {
		product.DiscountPercent = *updates.DiscountPercent
	}
	if updates.DiscountStart != nil {
		product.DiscountStart = updates.DiscountStart
	}
	if updates.DiscountEnd != nil {
		product.DiscountEnd = updates.DiscountEnd
	}
	if updates.StockQuantity != nil {
		product.StockQuantity = *updates.StockQuantity
	}
	if updates.Status != nil {
		product.Status = *updates.Status
	}
}
