package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportTotals holds the scalar KPIs computed over a filtered product set.
// All sums are zero-valued when no rows match, never null.
type ReportTotals struct {
	ProductCount      int             `json:"productCount"`
	TotalQuantity     int64           `json:"totalQuantity"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	InStockCount      int             `json:"inStockCount"`
	AlmostDoneCount   int             `json:"almostDoneCount"`
	OutOfStockCount   int             `json:"outOfStockCount"`
	DiscontinuedCount int             `json:"discontinuedCount"`
}

// CategoryBreakdownRow is one category's slice of the filtered inventory
type CategoryBreakdownRow struct {
	CategoryID    uuid.UUID       `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	ProductCount  int             `json:"productCount"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// SupplierBreakdownRow is one supplier's slice of the filtered inventory.
// Percentages are computed against the filtered totals; a zero denominator
// yields 0, not an error.
type SupplierBreakdownRow struct {
	SupplierID      uuid.UUID       `json:"supplierId"`
	SupplierName    string          `json:"supplierName"`
	ProductCount    int             `json:"productCount"`
	TotalQuantity   int64           `json:"totalQuantity"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	LowStockCount   int             `json:"lowStockCount"`
	OutOfStockCount int             `json:"outOfStockCount"`
	PctOfValue      decimal.Decimal `json:"pctOfValue"`
	PctOfQuantity   decimal.Decimal `json:"pctOfQuantity"`
	AvgUnitCost     decimal.Decimal `json:"avgUnitCost"`
}

// InventoryReport is the per-category KPI report
type InventoryReport struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	Filter      ProductFilter          `json:"-"`
	Totals      ReportTotals           `json:"totals"`
	Categories  []CategoryBreakdownRow `json:"categories"`
}

// SupplierReport is the per-supplier KPI report
type SupplierReport struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	Filter      ProductFilter          `json:"-"`
	Totals      ReportTotals           `json:"totals"`
	Suppliers   []SupplierBreakdownRow `json:"suppliers"`
}

// ChartPayload holds parallel label/value/percentage sequences for on-screen charting
type ChartPayload struct {
	Labels      []string          `json:"labels"`
	Values      []decimal.Decimal `json:"values"`
	Percentages []decimal.Decimal `json:"percentages"`
}

type InventoryReportResponse struct {
	Success bool             `json:"success"`
	Data    *InventoryReport `json:"data,omitempty"`
	Chart   *ChartPayload    `json:"chart,omitempty"`
}

type SupplierReportResponse struct {
	Success bool            `json:"success"`
	Data    *SupplierReport `json:"data,omitempty"`
	Chart   *ChartPayload   `json:"chart,omitempty"`
}

// Dashboard read models (on-screen stats, charts and tables)

type DashboardStats struct {
	TotalProducts   int64 `json:"totalProducts"`
	TotalCategories int64 `json:"totalCategories"`
	LowStock        int64 `json:"lowStock"`
	OutOfStock      int64 `json:"outOfStock"`
}

type SupplierPerformance struct {
	SupplierID   uuid.UUID `json:"supplierId"`
	Name         string    `json:"name"`
	ProductCount int64     `json:"productCount"`
}

type ProductActivity struct {
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DailyActivity struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type StatusCount struct {
	Status StockStatus `json:"status"`
	Count  int64       `json:"count"`
}

type TopProduct struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type Dashboard struct {
	Stats           DashboardStats        `json:"stats"`
	LowStockRows    []Product             `json:"lowStockRows"`
	ExpiringRows    []Product             `json:"expiringRows"`
	RecentActivity  []ProductActivity     `json:"recentActivity"`
	SupplierPerf    []SupplierPerformance `json:"supplierPerf"`
	ChartStatus     []StatusCount         `json:"chartStatus"`
	ChartTopProduct []TopProduct          `json:"chartTopProducts"`
	ChartDaily      []DailyActivity       `json:"chartDaily"`
}

type DashboardResponse struct {
	Success bool       `json:"success"`
	Data    *Dashboard `json:"data,omitempty"`
}
