package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocker/internal/models"
)

// ========== Supplier Handlers ==========

// CreateSupplier creates a new supplier
// POST /api/v1/suppliers
func (h *InventoryHandler) CreateSupplier(c *gin.Context) {
	var req models.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	supplier := &models.Supplier{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Website:  req.Website,
		ImageURL: req.ImageURL,
	}

	if err := h.repo.CreateSupplier(supplier); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(c, http.StatusConflict, "DUPLICATE_NAME", "A supplier with this name already exists")
			return
		}
		h.logger.WithError(err).Error("failed to create supplier")
		errorJSON(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create supplier")
		return
	}

	c.JSON(http.StatusCreated, models.SupplierResponse{
		Success: true,
		Data:    supplier,
		Message: stringPtr("Supplier created successfully"),
	})
}

// GetSupplier retrieves a supplier by ID
// GET /api/v1/suppliers/:id
func (h *InventoryHandler) GetSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID")
		return
	}

	supplier, err := h.repo.GetSupplierByID(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Supplier not found")
		return
	}

	c.JSON(http.StatusOK, models.SupplierResponse{Success: true, Data: supplier})
}

// ListSuppliers retrieves all suppliers ordered by name
// GET /api/v1/suppliers
func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.repo.ListSuppliers()
	if err != nil {
		h.logger.WithError(err).Error("failed to list suppliers")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list suppliers")
		return
	}

	c.JSON(http.StatusOK, models.SupplierListResponse{Success: true, Data: suppliers})
}

// UpdateSupplier updates a supplier
// PUT /api/v1/suppliers/:id
func (h *InventoryHandler) UpdateSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID")
		return
	}

	var req models.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	supplier, err := h.repo.GetSupplierByID(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Supplier not found")
		return
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.Phone != nil {
		supplier.Phone = req.Phone
	}
	if req.Email != nil {
		supplier.Email = req.Email
	}
	if req.Website != nil {
		supplier.Website = req.Website
	}
	if req.ImageURL != nil {
		supplier.ImageURL = req.ImageURL
	}

	if err := h.repo.UpdateSupplier(supplier); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(c, http.StatusConflict, "DUPLICATE_NAME", "A supplier with this name already exists")
			return
		}
		h.logger.WithError(err).Error("failed to update supplier")
		errorJSON(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update supplier")
		return
	}

	c.JSON(http.StatusOK, models.SupplierResponse{
		Success: true,
		Data:    supplier,
		Message: stringPtr("Supplier updated successfully"),
	})
}

// DeleteSupplier deletes a supplier, detaching its products
// DELETE /api/v1/suppliers/:id
func (h *InventoryHandler) DeleteSupplier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID")
		return
	}

	if _, err := h.repo.GetSupplierByID(id); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Supplier not found")
		return
	}

	if err := h.repo.DeleteSupplier(id); err != nil {
		h.logger.WithError(err).Error("failed to delete supplier")
		errorJSON(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete supplier")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Supplier deleted successfully"),
	})
}
