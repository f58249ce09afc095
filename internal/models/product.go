package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockStatus represents the stock status of a product
type StockStatus string

const (
	StockStatusInStock      StockStatus = "in_stock"
	StockStatusAlmostDone   StockStatus = "almost_done"
	StockStatusOutOfStock   StockStatus = "out_of_stock"
	StockStatusDiscontinued StockStatus = "discontinued"
)

// ValidStockStatus reports whether s is one of the known stock status values
func ValidStockStatus(s StockStatus) bool {
	switch s {
	case StockStatusInStock, StockStatusAlmostDone, StockStatusOutOfStock, StockStatusDiscontinued:
		return true
	}
	return false
}

// DeriveStockStatus computes the stock status from quantity and reorder level
func DeriveStockStatus(quantity, reorderLevel int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= reorderLevel:
		return StockStatusAlmostDone
	default:
		return StockStatusInStock
	}
}

// Category groups products. Deleting a category deletes its products.
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_name"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    *string   `json:"imageUrl,omitempty" gorm:"column:image_url;type:varchar(1024)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

// Supplier provides products. Many-to-many with Product; deleting a supplier
// only detaches the relation.
type Supplier struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_suppliers_name"`
	Phone    *string   `json:"phone,omitempty" gorm:"type:varchar(50)"`
	Email    *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	Website  *string   `json:"website,omitempty" gorm:"type:varchar(1024)"`
	ImageURL *string   `json:"imageUrl,omitempty" gorm:"column:image_url;type:varchar(1024)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// Product is a stocked item, uniquely identified by its SKU.
// StockStatus is derivable from quantity vs. reorder level but is persisted
// and can be set independently (e.g. discontinued, or by import).
type Product struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SKU        string    `json:"sku" gorm:"type:varchar(50);not null;uniqueIndex:idx_products_sku"`
	Name       string    `json:"name" gorm:"type:varchar(1024);not null"`
	CategoryID uuid.UUID `json:"categoryId" gorm:"type:uuid;not null;index"`
	Category   *Category `json:"category,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Suppliers []Supplier `json:"suppliers,omitempty" gorm:"many2many:product_suppliers;constraint:OnDelete:CASCADE"`

	Description  string          `json:"description" gorm:"type:text"`
	ImageURL     *string         `json:"imageUrl,omitempty" gorm:"column:image_url;type:varchar(1024)"`
	Quantity     int             `json:"quantity" gorm:"not null;default:0"`
	ReorderLevel int             `json:"reorderLevel" gorm:"not null;default:0"`
	CostPrice    decimal.Decimal `json:"costPrice" gorm:"type:numeric(10,2);not null"`
	StockStatus  StockStatus     `json:"stockStatus" gorm:"type:varchar(20);not null;default:'in_stock';index"`
	ExpiryDate   *time.Time      `json:"expiryDate,omitempty" gorm:"type:date"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// InventoryValue returns quantity x cost price for this product
func (p *Product) InventoryValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// LowStock reports whether the product is at or below its reorder level
func (p *Product) LowStock() bool {
	return p.Quantity <= p.ReorderLevel
}

// SupplierNames returns the names of the associated suppliers in association order
func (p *Product) SupplierNames() []string {
	names := make([]string, len(p.Suppliers))
	for i, s := range p.Suppliers {
		names[i] = s.Name
	}
	return names
}

// ProductFilter composes listing criteria shared by the inventory listing,
// the CSV export and the report builders, so that exported and reported data
// always reconcile with what the listing shows.
//
// Supplier matching is simple membership: a product matches when it is
// associated with at least one of the selected suppliers.
type ProductFilter struct {
	Query       string       `form:"q"`
	CategoryID  *uuid.UUID   `form:"category"`
	SupplierIDs []uuid.UUID  `form:"supplier"`
	Status      *StockStatus `form:"status"`
}

// Empty reports whether no criteria are set
func (f ProductFilter) Empty() bool {
	return f.Query == "" && f.CategoryID == nil && len(f.SupplierIDs) == 0 && f.Status == nil
}
