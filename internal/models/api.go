package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request models

type CreateProductRequest struct {
	SKU          string          `json:"sku" binding:"required,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=1024"`
	CategoryID   uuid.UUID       `json:"categoryId" binding:"required"`
	SupplierIDs  []uuid.UUID     `json:"supplierIds,omitempty"`
	Description  string          `json:"description,omitempty"`
	ImageURL     *string         `json:"imageUrl,omitempty"`
	Quantity     int             `json:"quantity" binding:"gte=0"`
	ReorderLevel int             `json:"reorderLevel" binding:"gte=0"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	StockStatus  *StockStatus    `json:"stockStatus,omitempty"`
	ExpiryDate   *string         `json:"expiryDate,omitempty"` // YYYY-MM-DD
}

type UpdateProductRequest struct {
	Name         *string          `json:"name,omitempty"`
	CategoryID   *uuid.UUID       `json:"categoryId,omitempty"`
	SupplierIDs  *[]uuid.UUID     `json:"supplierIds,omitempty"`
	Description  *string          `json:"description,omitempty"`
	ImageURL     *string          `json:"imageUrl,omitempty"`
	Quantity     *int             `json:"quantity,omitempty" binding:"omitempty,gte=0"`
	ReorderLevel *int             `json:"reorderLevel,omitempty" binding:"omitempty,gte=0"`
	CostPrice    *decimal.Decimal `json:"costPrice,omitempty"`
	StockStatus  *StockStatus     `json:"stockStatus,omitempty"`
	ExpiryDate   *string          `json:"expiryDate,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description string  `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

type CreateSupplierRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=255"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Website  *string `json:"website,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

type UpdateSupplierRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Website  *string `json:"website,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

// Response models

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data,omitempty"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type CategoryResponse struct {
	Success bool      `json:"success"`
	Data    *Category `json:"data,omitempty"`
	Message *string   `json:"message,omitempty"`
}

type CategoryListResponse struct {
	Success bool       `json:"success"`
	Data    []Category `json:"data"`
}

type SupplierResponse struct {
	Success bool      `json:"success"`
	Data    *Supplier `json:"data,omitempty"`
	Message *string   `json:"message,omitempty"`
}

type SupplierListResponse struct {
	Success bool       `json:"success"`
	Data    []Supplier `json:"data"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}
