package model

import (
	"context"
	"time"

	"shopadmin/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	UpdateUserPassword(ctx context.Context, id uint, passwordHash string) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserPasswordHash(ctx context.Context, id uint) (string, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)
	CountActiveCustomers(ctx context.Context) (int64, error)
	CountCustomersSince(ctx context.Context, since time.Time) (int64, error)

	// 商品管理
	CreateProduct(ctx context.Context, product *entity.DbProduct) error
	UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error
	GetProduct(ctx context.Context, id uint) (*entity.DbProduct, error)
	ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error)
	DeleteProduct(ctx context.Context, id uint) error
	BulkUpdateProducts(ctx context.Context, ids []uint, updates entity.ProductUpdates) (int64, error)
	BulkDeleteProducts(ctx context.Context, ids []uint) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]entity.DbProduct, error)
	ListCategoryCounts(ctx context.Context) ([]entity.CategoryCount, error)

	// 订单管理
	ListOrders(ctx context.Context, params *entity.OrderQuery) ([]entity.OrderSummary, *entity.Meta, error)
	GetOrderDetail(ctx context.Context, id uint) (*entity.OrderDetail, error)
	UpdateOrder(ctx context.Context, id uint, updates entity.OrderUpdates) error
	CountOrders(ctx context.Context) (int64, error)
	MonthlyRevenue(ctx context.Context) (float64, error)
	SalesSince(ctx context.Context, since time.Time) (int64, float64, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]entity.TopProduct, error)
}
