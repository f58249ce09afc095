package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stocker/internal/models"
)

func TestInventoryReportJSON(t *testing.T) {
	repo := new(MockInventoryRepository)
	category := &models.Category{ID: uuid.New(), Name: "Tools"}
	products := []models.Product{
		{
			ID:          uuid.New(),
			SKU:         "A100",
			Name:        "Widget",
			CategoryID:  category.ID,
			Category:    category,
			Quantity:    10,
			CostPrice:   decimal.RequireFromString("2.50"),
			StockStatus: models.StockStatusInStock,
		},
	}
	repo.On("FilterProducts", mock.AnythingOfType("models.ProductFilter")).Return(products, nil)

	handler := NewReportHandler(repo, nil, nil, nil)
	router := gin.New()
	router.GET("/reports/inventory", handler.InventoryReport)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/inventory", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.InventoryReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 1, resp.Data.Totals.ProductCount)
	assert.True(t, resp.Data.Totals.TotalValue.Equal(decimal.RequireFromString("25.00")))
	require.Len(t, resp.Data.Categories, 1)
	assert.Equal(t, "Tools", resp.Data.Categories[0].CategoryName)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, []string{"Tools"}, resp.Chart.Labels)
	repo.AssertExpectations(t)
}

func TestInventoryReportCSVFormat(t *testing.T) {
	repo := new(MockInventoryRepository)
	repo.On("FilterProducts", mock.AnythingOfType("models.ProductFilter")).
		Return([]models.Product{}, nil)

	handler := NewReportHandler(repo, nil, nil, nil)
	router := gin.New()
	router.GET("/reports/inventory", handler.InventoryReport)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/inventory?format=csv", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inventory_report_")
	assert.Contains(t, w.Body.String(), "Inventory Report")
}

func TestSupplierReportJSON(t *testing.T) {
	repo := new(MockInventoryRepository)
	category := &models.Category{ID: uuid.New(), Name: "Tools"}
	acme := models.Supplier{ID: uuid.New(), Name: "Acme"}
	products := []models.Product{
		{
			ID:          uuid.New(),
			SKU:         "A100",
			Name:        "Widget",
			CategoryID:  category.ID,
			Category:    category,
			Suppliers:   []models.Supplier{acme},
			Quantity:    10,
			CostPrice:   decimal.RequireFromString("2.50"),
			StockStatus: models.StockStatusInStock,
		},
	}
	repo.On("FilterProducts", mock.AnythingOfType("models.ProductFilter")).Return(products, nil)

	handler := NewReportHandler(repo, nil, nil, nil)
	router := gin.New()
	router.GET("/reports/suppliers", handler.SupplierReport)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/suppliers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SupplierReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Suppliers, 1)
	row := resp.Data.Suppliers[0]
	assert.Equal(t, "Acme", row.SupplierName)
	assert.True(t, row.PctOfValue.Equal(decimal.RequireFromString("100")), "got %s", row.PctOfValue)
	repo.AssertExpectations(t)
}

func TestReportRejectsInvalidFilter(t *testing.T) {
	repo := new(MockInventoryRepository)
	handler := NewReportHandler(repo, nil, nil, nil)
	router := gin.New()
	router.GET("/reports/inventory", handler.InventoryReport)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/inventory?category=nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "FilterProducts")
}

func TestDashboardAssemblesSections(t *testing.T) {
	repo := new(MockInventoryRepository)
	repo.On("CountProducts").Return(int64(42), nil)
	repo.On("CountCategories").Return(int64(5), nil)
	repo.On("CountLowStock").Return(int64(3), nil)
	repo.On("CountOutOfStock").Return(int64(1), nil)
	repo.On("LowStockProducts", 10).Return([]models.Product{}, nil)
	repo.On("ExpiringProducts", 30*24*time.Hour, 10).Return([]models.Product{}, nil)
	repo.On("RecentActivity", 10).Return([]models.ProductActivity{
		{Name: "Widget", SKU: "A100", UpdatedAt: time.Now()},
	}, nil)
	repo.On("SupplierPerformance", 10).Return([]models.SupplierPerformance{}, nil)
	repo.On("StatusBreakdown").Return([]models.StatusCount{
		{Status: models.StockStatusInStock, Count: 40},
	}, nil)
	repo.On("TopProductsByQuantity", 6).Return([]models.TopProduct{}, nil)
	repo.On("ActivityByDay", 7).Return([]models.DailyActivity{}, nil)

	handler := NewReportHandler(repo, nil, nil, nil)
	router := gin.New()
	router.GET("/dashboard", handler.Dashboard)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, int64(42), resp.Data.Stats.TotalProducts)
	assert.Equal(t, int64(3), resp.Data.Stats.LowStock)
	require.Len(t, resp.Data.RecentActivity, 1)
	assert.Equal(t, "A100", resp.Data.RecentActivity[0].SKU)
	repo.AssertExpectations(t)
}

func TestCheckLowStockWithoutPublisher(t *testing.T) {
	repo := new(MockInventoryRepository)
	repo.On("LowStockProducts", lowStockScanLimit).Return([]models.Product{
		{ID: uuid.New(), SKU: "A100", Name: "Widget", Quantity: 1, ReorderLevel: 5,
			CostPrice: decimal.Zero, StockStatus: models.StockStatusAlmostDone},
	}, nil)

	handler := NewReportHandler(repo, nil, nil, nil)
	router := gin.New()
	router.POST("/alerts/check", handler.CheckLowStock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/alerts/check", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Low stock check completed"))
	repo.AssertExpectations(t)
}
