package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocker/internal/models"
)

// ========== Category Handlers ==========

// CreateCategory creates a new category
// POST /api/v1/categories
func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := h.repo.CreateCategory(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(c, http.StatusConflict, "DUPLICATE_NAME", "A category with this name already exists")
			return
		}
		h.logger.WithError(err).Error("failed to create category")
		errorJSON(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{
		Success: true,
		Data:    category,
		Message: stringPtr("Category created successfully"),
	})
}

// GetCategory retrieves a category by ID
// GET /api/v1/categories/:id
func (h *InventoryHandler) GetCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
		return
	}

	category, err := h.repo.GetCategoryByID(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Data: category})
}

// ListCategories retrieves all categories ordered by name
// GET /api/v1/categories
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.repo.ListCategories()
	if err != nil {
		h.logger.WithError(err).Error("failed to list categories")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Success: true, Data: categories})
}

// UpdateCategory updates a category
// PUT /api/v1/categories/:id
func (h *InventoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	category, err := h.repo.GetCategoryByID(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ImageURL != nil {
		category.ImageURL = req.ImageURL
	}

	if err := h.repo.UpdateCategory(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(c, http.StatusConflict, "DUPLICATE_NAME", "A category with this name already exists")
			return
		}
		h.logger.WithError(err).Error("failed to update category")
		errorJSON(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{
		Success: true,
		Data:    category,
		Message: stringPtr("Category updated successfully"),
	})
}

// DeleteCategory deletes a category and all of its products
// DELETE /api/v1/categories/:id
func (h *InventoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID")
		return
	}

	if _, err := h.repo.GetCategoryByID(id); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	if err := h.repo.DeleteCategory(id); err != nil {
		h.logger.WithError(err).Error("failed to delete category")
		errorJSON(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete category")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Category and its products deleted successfully"),
	})
}
