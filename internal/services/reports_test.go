package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocker/internal/models"
)

func makeProduct(name, sku string, quantity, reorderLevel int, costPrice string, status models.StockStatus, category *models.Category, suppliers ...models.Supplier) models.Product {
	return models.Product{
		ID:           uuid.New(),
		SKU:          sku,
		Name:         name,
		CategoryID:   category.ID,
		Category:     category,
		Suppliers:    suppliers,
		Quantity:     quantity,
		ReorderLevel: reorderLevel,
		CostPrice:    decimal.RequireFromString(costPrice),
		StockStatus:  status,
	}
}

func TestComputeTotals(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "Tools"}
	products := []models.Product{
		makeProduct("Hammer", "A100", 10, 3, "2.50", models.StockStatusInStock, tools),
		makeProduct("Chisel", "A101", 2, 5, "4.00", models.StockStatusAlmostDone, tools),
		makeProduct("Plane", "A102", 0, 5, "30.00", models.StockStatusOutOfStock, tools),
		makeProduct("Adze", "A103", 7, 2, "1.00", models.StockStatusDiscontinued, tools),
	}

	totals := ComputeTotals(products)

	assert.Equal(t, 4, totals.ProductCount)
	assert.Equal(t, int64(19), totals.TotalQuantity)
	assert.True(t, totals.TotalValue.Equal(decimal.RequireFromString("40.00")),
		"got %s", totals.TotalValue)
	assert.Equal(t, 1, totals.InStockCount)
	assert.Equal(t, 1, totals.AlmostDoneCount)
	assert.Equal(t, 1, totals.OutOfStockCount)
	assert.Equal(t, 1, totals.DiscontinuedCount)
}

func TestComputeTotalsEmptySet(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.Equal(t, 0, totals.ProductCount)
	assert.Equal(t, int64(0), totals.TotalQuantity)
	assert.True(t, totals.TotalValue.IsZero())
}

func TestBuildInventoryReportGroupsAndOrdersByCategory(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "Tools"}
	abrasives := &models.Category{ID: uuid.New(), Name: "Abrasives"}
	products := []models.Product{
		makeProduct("Hammer", "A100", 10, 3, "2.50", models.StockStatusInStock, tools),
		makeProduct("Sandpaper", "B200", 100, 20, "0.10", models.StockStatusInStock, abrasives),
		makeProduct("Chisel", "A101", 2, 5, "4.00", models.StockStatusAlmostDone, tools),
	}

	report := BuildInventoryReport(products, models.ProductFilter{}, time.Now())

	require.Len(t, report.Categories, 2)
	assert.Equal(t, "Abrasives", report.Categories[0].CategoryName)
	assert.Equal(t, "Tools", report.Categories[1].CategoryName)

	toolsRow := report.Categories[1]
	assert.Equal(t, 2, toolsRow.ProductCount)
	assert.Equal(t, int64(12), toolsRow.TotalQuantity)
	assert.True(t, toolsRow.TotalValue.Equal(decimal.RequireFromString("33.00")),
		"got %s", toolsRow.TotalValue)
}

func TestBuildSupplierReportMetrics(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "Tools"}
	acme := models.Supplier{ID: uuid.New(), Name: "Acme"}
	beta := models.Supplier{ID: uuid.New(), Name: "Beta"}
	products := []models.Product{
		makeProduct("Hammer", "A100", 10, 3, "2.50", models.StockStatusInStock, tools, acme),
		makeProduct("Chisel", "A101", 2, 5, "4.00", models.StockStatusAlmostDone, tools, acme, beta),
		makeProduct("Plane", "A102", 0, 5, "30.00", models.StockStatusOutOfStock, tools, beta),
	}

	report := BuildSupplierReport(products, models.ProductFilter{}, time.Now())

	require.Len(t, report.Suppliers, 2)
	// Acme: 25.00 + 8.00 = 33.00; Beta: 8.00 + 0 = 8.00
	assert.Equal(t, "Acme", report.Suppliers[0].SupplierName)
	assert.Equal(t, "Beta", report.Suppliers[1].SupplierName)

	acmeRow := report.Suppliers[0]
	assert.Equal(t, 2, acmeRow.ProductCount)
	assert.Equal(t, int64(12), acmeRow.TotalQuantity)
	assert.True(t, acmeRow.TotalValue.Equal(decimal.RequireFromString("33.00")))
	assert.Equal(t, 1, acmeRow.LowStockCount)
	assert.Equal(t, 0, acmeRow.OutOfStockCount)
	// 33.00 / 33.00 of total value
	assert.True(t, acmeRow.PctOfValue.Equal(decimal.RequireFromString("100")),
		"got %s", acmeRow.PctOfValue)
	assert.True(t, acmeRow.AvgUnitCost.Equal(decimal.RequireFromString("2.75")),
		"got %s", acmeRow.AvgUnitCost)

	betaRow := report.Suppliers[1]
	assert.Equal(t, 1, betaRow.LowStockCount)
	assert.Equal(t, 1, betaRow.OutOfStockCount)
	assert.True(t, betaRow.PctOfQuantity.Equal(decimal.RequireFromString("16.67")),
		"got %s", betaRow.PctOfQuantity)
}

func TestBuildSupplierReportOrdersTiesByName(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "Tools"}
	zeta := models.Supplier{ID: uuid.New(), Name: "Zeta"}
	acme := models.Supplier{ID: uuid.New(), Name: "Acme"}
	products := []models.Product{
		makeProduct("Hammer", "A100", 4, 1, "5.00", models.StockStatusInStock, tools, zeta),
		makeProduct("Chisel", "A101", 2, 1, "10.00", models.StockStatusInStock, tools, acme),
	}

	report := BuildSupplierReport(products, models.ProductFilter{}, time.Now())

	require.Len(t, report.Suppliers, 2)
	assert.Equal(t, "Acme", report.Suppliers[0].SupplierName, "equal values break ties by name")
	assert.Equal(t, "Zeta", report.Suppliers[1].SupplierName)
}

func TestBuildSupplierReportZeroDenominators(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "Tools"}
	acme := models.Supplier{ID: uuid.New(), Name: "Acme"}
	products := []models.Product{
		makeProduct("Plane", "A102", 0, 0, "0.00", models.StockStatusOutOfStock, tools, acme),
	}

	report := BuildSupplierReport(products, models.ProductFilter{}, time.Now())

	require.Len(t, report.Suppliers, 1)
	row := report.Suppliers[0]
	assert.True(t, row.PctOfValue.IsZero())
	assert.True(t, row.PctOfQuantity.IsZero())
	assert.True(t, row.AvgUnitCost.IsZero())
}

func TestInventoryChartIsParallel(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "Tools"}
	abrasives := &models.Category{ID: uuid.New(), Name: "Abrasives"}
	products := []models.Product{
		makeProduct("Hammer", "A100", 3, 1, "10.00", models.StockStatusInStock, tools),
		makeProduct("Sandpaper", "B200", 10, 2, "1.00", models.StockStatusInStock, abrasives),
	}

	report := BuildInventoryReport(products, models.ProductFilter{}, time.Now())
	chart := InventoryChart(report)

	require.Len(t, chart.Labels, 2)
	require.Len(t, chart.Values, 2)
	require.Len(t, chart.Percentages, 2)
	assert.Equal(t, []string{"Abrasives", "Tools"}, chart.Labels)
	assert.True(t, chart.Percentages[0].Equal(decimal.RequireFromString("25")),
		"got %s", chart.Percentages[0])
	assert.True(t, chart.Percentages[1].Equal(decimal.RequireFromString("75")),
		"got %s", chart.Percentages[1])
}

func TestWriteInventoryReportCSV(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "=Tools"}
	products := []models.Product{
		makeProduct("Hammer", "A100", 10, 3, "2.50", models.StockStatusInStock, tools),
	}
	generatedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	report := BuildInventoryReport(products, models.ProductFilter{}, generatedAt)

	var buf bytes.Buffer
	require.NoError(t, WriteInventoryReportCSV(&buf, report))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\xEF\xBB\xBF")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Inventory Report"}, records[0])
	assert.Equal(t, []string{"Generated", "2026-09-01 12:00"}, records[1])
	// blank separator lines are dropped on read-back
	assert.Equal(t, []string{"Total Products", "1"}, records[2])
	assert.Equal(t, []string{"Total Value", "25.00"}, records[4])

	last := records[len(records)-1]
	assert.Equal(t, "'=Tools", last[0], "category name must be escaped")
	assert.Equal(t, "25.00", last[3])
}

func TestWriteSupplierReportCSV(t *testing.T) {
	tools := &models.Category{ID: uuid.New(), Name: "Tools"}
	acme := models.Supplier{ID: uuid.New(), Name: "Acme"}
	products := []models.Product{
		makeProduct("Hammer", "A100", 10, 3, "2.50", models.StockStatusInStock, tools, acme),
	}
	report := BuildSupplierReport(products, models.ProductFilter{}, time.Now())

	var buf bytes.Buffer
	require.NoError(t, WriteSupplierReportCSV(&buf, report))

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Supplier Report"}, records[0])
	last := records[len(records)-1]
	assert.Equal(t, "Acme", last[0])
	assert.Equal(t, "100.00", last[6])
	assert.Equal(t, "2.50", last[8])
}
