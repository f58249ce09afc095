package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stocker/internal/models"
)

// parseProductFilter reads the shared filter query parameters (q, category,
// supplier [repeatable], status) used by the listing, the export and the
// reports, so all three operate on the same product set.
func parseProductFilter(c *gin.Context) (models.ProductFilter, error) {
	var filter models.ProductFilter

	filter.Query = strings.TrimSpace(c.Query("q"))

	if v := c.Query("category"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid category id %q", v)
		}
		filter.CategoryID = &id
	}

	for _, v := range c.QueryArray("supplier") {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid supplier id %q", v)
		}
		filter.SupplierIDs = append(filter.SupplierIDs, id)
	}

	if v := c.Query("status"); v != "" {
		status := models.StockStatus(v)
		if !models.ValidStockStatus(status) {
			return filter, fmt.Errorf("invalid stock status %q", v)
		}
		filter.Status = &status
	}

	return filter, nil
}

func parsePagination(c *gin.Context, defaultSize, maxSize int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSize)))
	if limit < 1 {
		limit = defaultSize
	}
	if limit > maxSize {
		limit = maxSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

func stringPtr(s string) *string {
	return &s
}
