package entity

import "time"

const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

// DbProduct 表示商品记录。
type DbProduct struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Name            string     `gorm:"column:name;type:varchar(255);uniqueIndex;not null" json:"name"`
	ImageURL        string     `gorm:"column:image_url;type:varchar(500)" json:"image_url"`
	Category        string     `gorm:"column:category;type:varchar(100);index;not null" json:"category"`
	Subcategory     string     `gorm:"column:subcategory;type:varchar(100)" json:"subcategory"`
	Description     string     `gorm:"column:description;type:text" json:"description"`
	Price           float64    `gorm:"column:price;not null" json:"price"`
	IsNewest        bool       `gorm:"column:is_newest;not null;default:false" json:"is_newest"`
	IsPopular       bool       `gorm:"column:is_popular;not null;default:false" json:"is_popular"`
	DiscountPercent int        `gorm:"column:discount_percent;not null;default:0" json:"discount_percent"`
	DiscountStart   *time.Time `gorm:"column:discount_start" json:"discount_start,omitempty"`
	DiscountEnd     *time.Time `gorm:"column:discount_end" json:"discount_end,omitempty"`
	StockQuantity   int        `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	Status          string     `gorm:"column:status;type:varchar(50);index;not null;default:active" json:"status"`
}

// TableName 指定表名。
func (DbProduct) TableName() string {
	return "products"
}

// ProductQuery supports listing products with filters and pagination.
type ProductQuery struct {
	BaseParams
	Category string `json:"category" form:"category" query:"category"`
	Status   string `json:"status" form:"status" query:"status"`
	Search   string `json:"search" form:"search" query:"search"`
}

// ProductCreateRequest is the payload for creating a product.
type ProductCreateRequest struct {
	Name            string     `json:"name"`
	ImageURL        string     `json:"image_url"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory"`
	Description     string     `json:"description"`
	Price           float64    `json:"price"`
	IsNewest        bool       `json:"is_newest"`
	IsPopular       bool       `json:"is_popular"`
	DiscountPercent int        `json:"discount_percent"`
	DiscountStart   *time.Time `json:"discount_start"`
	DiscountEnd     *time.Time `json:"discount_end"`
	StockQuantity   *int       `json:"stock_quantity"`
	Status          string     `json:"status"`
}

// ProductUpdateRequest is the payload for updating a product.
type ProductUpdateRequest struct {
	Name            *string    `json:"name,omitempty"`
	ImageURL        *string    `json:"image_url,omitempty"`
	Category        *string    `json:"category,omitempty"`
	Subcategory     *string    `json:"subcategory,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Price           *float64   `json:"price,omitempty"`
	IsNewest        *bool      `json:"is_newest,omitempty"`
	IsPopular       *bool      `json:"is_popular,omitempty"`
	DiscountPercent *int       `json:"discount_percent,omitempty"`
	DiscountStart   *time.Time `json:"discount_start,omitempty"`
	DiscountEnd     *time.Time `json:"discount_end,omitempty"`
	StockQuantity   *int       `json:"stock_quantity,omitempty"`
	Status          *string    `json:"status,omitempty"`
}

// ProductBulkUpdateRequest applies the same changes to a set of products.
type ProductBulkUpdateRequest struct {
	ProductIDs []uint               `json:"product_ids"`
	Updates    ProductUpdateRequest `json:"updates"`
}

// ProductBulkDeleteRequest removes a set of products.
type ProductBulkDeleteRequest struct {
	ProductIDs []uint `json:"product_ids"`
}

// ProductListResponse is the response for listing products.
type ProductListResponse struct {
	Products []DbProduct `json:"products"`
	Meta     *Meta       `json:"meta"`
}

// CategoryCount 按分类统计商品数量。
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
