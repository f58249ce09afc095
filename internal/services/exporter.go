// Package services holds the CSV import/export and reporting pipeline:
// parsing uploaded sheets into validated upserts, serializing filtered
// product sets back to CSV, and computing KPI aggregates over the same
// filtered set the listing shows.
package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"stocker/internal/models"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04"
	filenameLayout  = "20060102_150405"

	utf8BOM = "\xEF\xBB\xBF"
)

// ProductExportHeader is the fixed column ordering of the product export.
// Import accepts the same column names (case-insensitive).
var ProductExportHeader = []string{
	"ID", "Name", "SKU", "Category", "Suppliers",
	"Cost Price", "Quantity", "Reorder Level", "Stock Status",
	"Expiry Date", "Description", "Image URL", "Created", "Updated",
}

// SanitizeCell defuses CSV injection: a cell beginning with a formula
// trigger character is prefixed with an apostrophe so spreadsheet software
// treats it as text.
func SanitizeCell(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@':
		return "'" + value
	}
	return value
}

// CollapseNewlines replaces line breaks with single spaces so multi-line
// descriptions stay on one CSV row cell.
func CollapseNewlines(value string) string {
	return strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(value)
}

// ExportFilename returns a timestamped attachment filename, e.g.
// products_20260901_130501.csv
func ExportFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, t.Format(filenameLayout))
}

// WriteProductsCSV serializes the ordered product set as a UTF-8 CSV
// document with a byte-order mark, the fixed header and one row per product.
func WriteProductsCSV(w io.Writer, products []models.Product) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(ProductExportHeader); err != nil {
		return err
	}
	for i := range products {
		if err := writer.Write(productRow(&products[i])); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func productRow(p *models.Product) []string {
	categoryName := ""
	if p.Category != nil {
		categoryName = p.Category.Name
	}

	expiry := ""
	if p.ExpiryDate != nil {
		expiry = p.ExpiryDate.Format(dateLayout)
	}

	imageURL := ""
	if p.ImageURL != nil {
		imageURL = *p.ImageURL
	}

	return []string{
		p.ID.String(),
		SanitizeCell(p.Name),
		SanitizeCell(p.SKU),
		SanitizeCell(categoryName),
		SanitizeCell(strings.Join(p.SupplierNames(), ", ")),
		p.CostPrice.StringFixed(2),
		fmt.Sprintf("%d", p.Quantity),
		fmt.Sprintf("%d", p.ReorderLevel),
		string(p.StockStatus),
		expiry,
		SanitizeCell(CollapseNewlines(p.Description)),
		SanitizeCell(imageURL),
		p.CreatedAt.Format(timestampLayout),
		p.UpdatedAt.Format(timestampLayout),
	}
}
