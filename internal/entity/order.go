package entity

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether the given status is a known order state.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// DbOrder 表示订单记录。
type DbOrder struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	UserID          uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	TotalAmount     float64   `gorm:"column:total_amount;not null" json:"total_amount"`
	Status          string    `gorm:"column:status;type:varchar(50);index;not null;default:pending" json:"status"`
	PaymentMethod   string    `gorm:"column:payment_method;type:varchar(50)" json:"payment_method"`
	PaymentStatus   string    `gorm:"column:payment_status;type:varchar(50)" json:"payment_status"`
	ShippingAddress string    `gorm:"column:shipping_address;type:text" json:"shipping_address"`
	BillingAddress  string    `gorm:"column:billing_address;type:text" json:"billing_address"`
	Notes           string    `gorm:"column:notes;type:text" json:"notes"`
}

// TableName 指定表名。
func (DbOrder) TableName() string {
	return "orders"
}

// DbOrderItem 表示订单明细行。
type DbOrderItem struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	OrderID   uint    `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID uint    `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity  int     `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice float64 `gorm:"column:unit_price;not null" json:"unit_price"`
}

// TableName 指定表名。
func (DbOrderItem) TableName() string {
	return "order_items"
}

// OrderQuery supports listing orders with filters and pagination.
type OrderQuery struct {
	BaseParams
	Status   string     `json:"status" form:"status" query:"status"`
	UserID   uint       `json:"user_id" form:"user_id" query:"user_id"`
	DateFrom *time.Time `json:"date_from" form:"date_from" query:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `json:"date_to" form:"date_to" query:"date_to" time_format:"2006-01-02"`
}

// OrderSummary is an order row joined with the purchaser's identity.
type OrderSummary struct {
	DbOrder
	Username string `json:"username"`
	Email    string `json:"email"`
}

// OrderItemDetail is an order line joined with product info.
type OrderItemDetail struct {
	DbOrderItem
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image"`
}

// OrderDetail is a full order with its items.
type OrderDetail struct {
	OrderSummary
	Items []OrderItemDetail `json:"items"`
}

// OrderListResponse is the response for listing orders.
type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
	Meta   *Meta          `json:"meta"`
}

// OrderStatusUpdateRequest changes an order's state.
type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}
