package entity

import "time"

// UserUpdates 用户更新字段
type UserUpdates struct {
	FirstName     *string
	LastName      *string
	Phone         *string
	Role          *string
	PasswordHash  *string
	IsActive      *bool
	EmailVerified *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.FirstName != nil {
		updates["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		updates["last_name"] = *u.LastName
	}
	if u.Phone != nil {
		updates["phone"] = *u.Phone
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	if u.EmailVerified != nil {
		updates["email_verified"] = *u.EmailVerified
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ProductUpdates 商品更新字段
type ProductUpdates struct {
	Name            *string
	ImageURL        *string
	Category        *string
	Subcategory     *string
	Description     *string
	Price           *float64
	IsNewest        *bool
	IsPopular       *bool
	DiscountPercent *int
	DiscountStart   *time.Time
	DiscountEnd     *time.Time
	StockQuantity   *int
	Status          *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u ProductUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.ImageURL != nil {
		updates["image_url"] = *u.ImageURL
	}
	if u.Category != nil {
		updates["category"] = *u.Category
	}
	if u.Subcategory != nil {
		updates["subcategory"] = *u.Subcategory
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	if u.IsNewest != nil {
		updates["is_newest"] = *u.IsNewest
	}
	if u.IsPopular != nil {
		updates["is_popular"] = *u.IsPopular
	}
	if u.DiscountPercent != nil {
		updates["discount_percent"] = *u.DiscountPercent
	}
	if u.DiscountStart != nil {
		updates["discount_start"] = *u.DiscountStart
	}
	if u.DiscountEnd != nil {
		updates["discount_end"] = *u.DiscountEnd
	}
	if u.StockQuantity != nil {
		updates["stock_quantity"] = *u.StockQuantity
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u ProductUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// OrderUpdates 订单更新字段
type OrderUpdates struct {
	Status        *string
	PaymentStatus *string
	Notes         *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u OrderUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.PaymentStatus != nil {
		updates["payment_status"] = *u.PaymentStatus
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u OrderUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
