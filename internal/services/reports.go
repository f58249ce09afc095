package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocker/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// percentage returns part/total * 100 rounded to two places, or zero when
// the denominator is zero.
func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(oneHundred).Round(2)
}

// ComputeTotals computes the scalar KPIs over a filtered product set.
// Aggregation is stateless: everything is recomputed from the given slice.
func ComputeTotals(products []models.Product) models.ReportTotals {
	totals := models.ReportTotals{TotalValue: decimal.Zero}
	for i := range products {
		p := &products[i]
		totals.ProductCount++
		totals.TotalQuantity += int64(p.Quantity)
		totals.TotalValue = totals.TotalValue.Add(p.InventoryValue())

		switch p.StockStatus {
		case models.StockStatusInStock:
			totals.InStockCount++
		case models.StockStatusAlmostDone:
			totals.AlmostDoneCount++
		case models.StockStatusOutOfStock:
			totals.OutOfStockCount++
		case models.StockStatusDiscontinued:
			totals.DiscontinuedCount++
		}
	}
	return totals
}

// BuildInventoryReport aggregates the filtered product set per category,
// ordered by category name.
func BuildInventoryReport(products []models.Product, filter models.ProductFilter, generatedAt time.Time) *models.InventoryReport {
	byCategory := make(map[uuid.UUID]*models.CategoryBreakdownRow)
	for i := range products {
		p := &products[i]
		name := ""
		if p.Category != nil {
			name = p.Category.Name
		}

		row, ok := byCategory[p.CategoryID]
		if !ok {
			row = &models.CategoryBreakdownRow{
				CategoryID:   p.CategoryID,
				CategoryName: name,
				TotalValue:   decimal.Zero,
			}
			byCategory[p.CategoryID] = row
		}
		row.ProductCount++
		row.TotalQuantity += int64(p.Quantity)
		row.TotalValue = row.TotalValue.Add(p.InventoryValue())
	}

	rows := make([]models.CategoryBreakdownRow, 0, len(byCategory))
	for _, row := range byCategory {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CategoryName < rows[j].CategoryName
	})

	return &models.InventoryReport{
		GeneratedAt: generatedAt,
		Filter:      filter,
		Totals:      ComputeTotals(products),
		Categories:  rows,
	}
}

// BuildSupplierReport aggregates the filtered product set per supplier with
// at least one matching product, ordered by descending total value and tied
// by name ascending. Percentages are taken against the filtered totals.
func BuildSupplierReport(products []models.Product, filter models.ProductFilter, generatedAt time.Time) *models.SupplierReport {
	totals := ComputeTotals(products)

	bySupplier := make(map[uuid.UUID]*models.SupplierBreakdownRow)
	for i := range products {
		p := &products[i]
		for _, s := range p.Suppliers {
			row, ok := bySupplier[s.ID]
			if !ok {
				row = &models.SupplierBreakdownRow{
					SupplierID:   s.ID,
					SupplierName: s.Name,
					TotalValue:   decimal.Zero,
				}
				bySupplier[s.ID] = row
			}
			row.ProductCount++
			row.TotalQuantity += int64(p.Quantity)
			row.TotalValue = row.TotalValue.Add(p.InventoryValue())
			if p.LowStock() {
				row.LowStockCount++
			}
			if p.StockStatus == models.StockStatusOutOfStock || p.Quantity <= 0 {
				row.OutOfStockCount++
			}
		}
	}

	totalQuantity := decimal.NewFromInt(totals.TotalQuantity)
	rows := make([]models.SupplierBreakdownRow, 0, len(bySupplier))
	for _, row := range bySupplier {
		row.PctOfValue = percentage(row.TotalValue, totals.TotalValue)
		row.PctOfQuantity = percentage(decimal.NewFromInt(row.TotalQuantity), totalQuantity)
		if row.TotalQuantity > 0 {
			row.AvgUnitCost = row.TotalValue.Div(decimal.NewFromInt(row.TotalQuantity)).Round(2)
		} else {
			row.AvgUnitCost = decimal.Zero
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		cmp := rows[i].TotalValue.Cmp(rows[j].TotalValue)
		if cmp != 0 {
			return cmp > 0
		}
		return rows[i].SupplierName < rows[j].SupplierName
	})

	return &models.SupplierReport{
		GeneratedAt: generatedAt,
		Filter:      filter,
		Totals:      totals,
		Suppliers:   rows,
	}
}

// InventoryChart flattens the category breakdown into parallel sequences
// for on-screen charting
func InventoryChart(report *models.InventoryReport) *models.ChartPayload {
	chart := &models.ChartPayload{
		Labels:      make([]string, 0, len(report.Categories)),
		Values:      make([]decimal.Decimal, 0, len(report.Categories)),
		Percentages: make([]decimal.Decimal, 0, len(report.Categories)),
	}
	for _, row := range report.Categories {
		chart.Labels = append(chart.Labels, row.CategoryName)
		chart.Values = append(chart.Values, row.TotalValue)
		chart.Percentages = append(chart.Percentages, percentage(row.TotalValue, report.Totals.TotalValue))
	}
	return chart
}

// SupplierChart flattens the supplier breakdown into parallel sequences
// for on-screen charting
func SupplierChart(report *models.SupplierReport) *models.ChartPayload {
	chart := &models.ChartPayload{
		Labels:      make([]string, 0, len(report.Suppliers)),
		Values:      make([]decimal.Decimal, 0, len(report.Suppliers)),
		Percentages: make([]decimal.Decimal, 0, len(report.Suppliers)),
	}
	for _, row := range report.Suppliers {
		chart.Labels = append(chart.Labels, row.SupplierName)
		chart.Values = append(chart.Values, row.TotalValue)
		chart.Percentages = append(chart.Percentages, row.PctOfValue)
	}
	return chart
}

func writeReportPreamble(writer *csv.Writer, title string, generatedAt time.Time, totals models.ReportTotals) error {
	preamble := [][]string{
		{title},
		{"Generated", generatedAt.Format(timestampLayout)},
		{},
		{"Total Products", fmt.Sprintf("%d", totals.ProductCount)},
		{"Total Quantity", fmt.Sprintf("%d", totals.TotalQuantity)},
		{"Total Value", totals.TotalValue.StringFixed(2)},
		{"In Stock", fmt.Sprintf("%d", totals.InStockCount)},
		{"Almost Done", fmt.Sprintf("%d", totals.AlmostDoneCount)},
		{"Out of Stock", fmt.Sprintf("%d", totals.OutOfStockCount)},
		{},
	}
	for _, line := range preamble {
		if err := writer.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// WriteInventoryReportCSV serializes the inventory KPI report: a metadata
// and KPI summary block followed by the per-category table.
func WriteInventoryReportCSV(w io.Writer, report *models.InventoryReport) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writeReportPreamble(writer, "Inventory Report", report.GeneratedAt, report.Totals); err != nil {
		return err
	}
	if err := writer.Write([]string{"Category", "Products", "Total Quantity", "Total Value"}); err != nil {
		return err
	}
	for _, row := range report.Categories {
		record := []string{
			SanitizeCell(row.CategoryName),
			fmt.Sprintf("%d", row.ProductCount),
			fmt.Sprintf("%d", row.TotalQuantity),
			row.TotalValue.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSupplierReportCSV serializes the supplier KPI report
func WriteSupplierReportCSV(w io.Writer, report *models.SupplierReport) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writeReportPreamble(writer, "Supplier Report", report.GeneratedAt, report.Totals); err != nil {
		return err
	}
	header := []string{
		"Supplier", "Products", "Total Quantity", "Total Value",
		"Low Stock", "Out of Stock", "% of Value", "% of Quantity", "Avg Unit Cost",
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range report.Suppliers {
		record := []string{
			SanitizeCell(row.SupplierName),
			fmt.Sprintf("%d", row.ProductCount),
			fmt.Sprintf("%d", row.TotalQuantity),
			row.TotalValue.StringFixed(2),
			fmt.Sprintf("%d", row.LowStockCount),
			fmt.Sprintf("%d", row.OutOfStockCount),
			row.PctOfValue.StringFixed(2),
			row.PctOfQuantity.StringFixed(2),
			row.AvgUnitCost.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
