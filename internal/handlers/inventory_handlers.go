package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stocker/internal/events"
	"stocker/internal/models"
	"stocker/internal/repository"
	"stocker/internal/services"
)

// InventoryHandler serves the product/category/supplier CRUD endpoints and
// the filtered CSV export
type InventoryHandler struct {
	repo            repository.InventoryRepositoryInterface
	alerts          *events.AlertPublisher
	logger          *logrus.Entry
	defaultPageSize int
	maxPageSize     int
}

func NewInventoryHandler(repo repository.InventoryRepositoryInterface, alerts *events.AlertPublisher, logger *logrus.Logger, defaultPageSize, maxPageSize int) *InventoryHandler {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &InventoryHandler{
		repo:            repo,
		alerts:          alerts,
		logger:          log.WithField("component", "inventory-handler"),
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// maybePublishLowStock fires a low-stock alert when the stock status
// transitioned into almost_done or out_of_stock. Fire-and-forget: failures
// are logged inside the publisher and never affect the response.
func (h *InventoryHandler) maybePublishLowStock(previous models.StockStatus, product *models.Product) {
	if h.alerts == nil {
		return
	}
	low := product.StockStatus == models.StockStatusAlmostDone || product.StockStatus == models.StockStatusOutOfStock
	if !low || previous == product.StockStatus {
		return
	}
	p := *product
	go func() {
		_ = h.alerts.PublishLowStock(context.Background(), &p)
	}()
}

// ========== Product Handlers ==========

// CreateProduct creates a new product
// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if _, err := h.repo.GetCategoryByID(req.CategoryID); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category does not exist")
		return
	}

	product := &models.Product{
		SKU:          req.SKU,
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		CostPrice:    req.CostPrice,
	}

	if req.StockStatus != nil && models.ValidStockStatus(*req.StockStatus) {
		product.StockStatus = *req.StockStatus
	} else {
		product.StockStatus = models.DeriveStockStatus(req.Quantity, req.ReorderLevel)
	}

	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		t, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Expiry date must be YYYY-MM-DD")
			return
		}
		product.ExpiryDate = &t
	}

	if err := h.repo.CreateProduct(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(c, http.StatusConflict, "DUPLICATE_SKU", "A product with this SKU already exists")
			return
		}
		h.logger.WithError(err).Error("failed to create product")
		errorJSON(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create product")
		return
	}

	if len(req.SupplierIDs) > 0 {
		suppliers, err := h.resolveSuppliers(req.SupplierIDs)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		if err := h.repo.ReplaceProductSuppliers(product, suppliers); err != nil {
			h.logger.WithError(err).Error("failed to attach suppliers")
			errorJSON(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to attach suppliers")
			return
		}
	}

	h.maybePublishLowStock(models.StockStatusInStock, product)

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product created successfully"),
	})
}

// GetProduct retrieves a product by ID
// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// ListProducts retrieves the filtered, paginated product listing
// GET /api/v1/products?q=&category=&supplier=&status=&page=&limit=
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	page, limit := parsePagination(c, h.defaultPageSize, h.maxPageSize)

	products, total, err := h.repo.ListProducts(filter, page, limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages(total, limit),
		},
	})
}

// UpdateProduct updates a product
// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}
	previousStatus := product.StockStatus

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.CategoryID != nil {
		if _, err := h.repo.GetCategoryByID(*req.CategoryID); err != nil {
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category does not exist")
			return
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.ReorderLevel != nil {
		product.ReorderLevel = *req.ReorderLevel
	}
	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.ExpiryDate != nil {
		if *req.ExpiryDate == "" {
			product.ExpiryDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *req.ExpiryDate)
			if err != nil {
				errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Expiry date must be YYYY-MM-DD")
				return
			}
			product.ExpiryDate = &t
		}
	}
	if req.StockStatus != nil {
		if !models.ValidStockStatus(*req.StockStatus) {
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid stock status")
			return
		}
		product.StockStatus = *req.StockStatus
	} else if req.Quantity != nil || req.ReorderLevel != nil {
		// Keep explicit discontinued; otherwise re-derive from the new levels.
		if product.StockStatus != models.StockStatusDiscontinued {
			product.StockStatus = models.DeriveStockStatus(product.Quantity, product.ReorderLevel)
		}
	}

	if err := h.repo.UpdateProduct(product); err != nil {
		h.logger.WithError(err).Error("failed to update product")
		errorJSON(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update product")
		return
	}

	if req.SupplierIDs != nil {
		suppliers, err := h.resolveSuppliers(*req.SupplierIDs)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		if err := h.repo.ReplaceProductSuppliers(product, suppliers); err != nil {
			h.logger.WithError(err).Error("failed to replace suppliers")
			errorJSON(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to replace suppliers")
			return
		}
	}

	h.maybePublishLowStock(previousStatus, product)

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product updated successfully"),
	})
}

// DeleteProduct deletes a product
// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	if _, err := h.repo.GetProductByID(id); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	if err := h.repo.DeleteProduct(id); err != nil {
		h.logger.WithError(err).Error("failed to delete product")
		errorJSON(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Product deleted successfully"),
	})
}

// ExportProducts streams the filtered product set as a CSV attachment
// GET /api/v1/products/export?q=&category=&supplier=&status=
func (h *InventoryHandler) ExportProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	products, err := h.repo.FilterProducts(filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to export products")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to export products")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+services.ExportFilename("products", time.Now()))
	c.Status(http.StatusOK)

	if err := services.WriteProductsCSV(c.Writer, products); err != nil {
		h.logger.WithError(err).Error("failed to write product CSV")
	}
}

func (h *InventoryHandler) resolveSuppliers(ids []uuid.UUID) ([]models.Supplier, error) {
	suppliers := make([]models.Supplier, 0, len(ids))
	for _, id := range ids {
		supplier, err := h.repo.GetSupplierByID(id)
		if err != nil {
			return nil, errors.New("supplier " + id.String() + " does not exist")
		}
		suppliers = append(suppliers, *supplier)
	}
	return suppliers, nil
}
