package entity

// DashboardStats 后台首页统计数据。
type DashboardStats struct {
	TotalProducts  int64   `json:"totalProducts"`
	TotalOrders    int64   `json:"totalOrders"`
	TotalCustomers int64   `json:"totalCustomers"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// SalesAnalytics 销售分析数据。
type SalesAnalytics struct {
	TotalSales        int64   `json:"totalSales"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// TopProduct is a product ranked by units sold.
type TopProduct struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitsSold   int64  `json:"units_sold"`
}

// ProductAnalytics 商品分析数据。
type ProductAnalytics struct {
	TopProducts         []TopProduct    `json:"topProducts"`
	CategoryPerformance []CategoryCount `json:"categoryPerformance"`
	StockAlerts         []DbProduct     `json:"stockAlerts"`
}

// CustomerAnalytics 客户分析数据。
type CustomerAnalytics struct {
	NewCustomers    int64 `json:"newCustomers"`
	ActiveCustomers int64 `json:"activeCustomers"`
}
