package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"stocker/internal/services"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

type ImportHandler struct {
	importer *services.Importer
	logger   *logrus.Entry
}

func NewImportHandler(importer *services.Importer, logger *logrus.Logger) *ImportHandler {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ImportHandler{
		importer: importer,
		logger:   log.WithField("component", "import-handler"),
	}
}

// ProductImportTemplate returns the template for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "SKU", Description: "Unique stock keeping unit", Required: true, Type: "string", Example: "A100"},
			{Name: "Name", Description: "Product name", Required: true, Type: "string", Example: "Widget"},
			{Name: "Category", Description: "Category name (created if absent)", Required: true, Type: "string", Example: "Tools"},
			{Name: "Quantity", Description: "Units in stock", Required: false, Type: "number", Example: "5"},
			{Name: "Reorder Level", Description: "Low-stock threshold", Required: false, Type: "number", Example: "10"},
			{Name: "Cost Price", Description: "Unit cost", Required: false, Type: "number", Example: "2.50"},
			{Name: "Stock Status", Description: "in_stock, almost_done, out_of_stock or discontinued (derived when absent)", Required: false, Type: "string", Example: "almost_done"},
			{Name: "Suppliers", Description: "Comma-separated supplier names (created if absent)", Required: false, Type: "string", Example: "Acme, Beta"},
			{Name: "Expiry Date", Description: "YYYY-MM-DD", Required: false, Type: "date", Example: "2027-01-31"},
			{Name: "Description", Description: "Free text", Required: false, Type: "string", Example: "Steel widget"},
		},
		SampleData: []map[string]string{
			{
				"SKU":           "A100",
				"Name":          "Widget",
				"Category":      "Tools",
				"Quantity":      "5",
				"Reorder Level": "10",
				"Cost Price":    "2.50",
				"Stock Status":  "almost_done",
				"Suppliers":     "Acme, Beta",
				"Expiry Date":   "",
				"Description":   "Steel widget",
			},
		},
	}
}

// GetProductImportTemplate returns the product import template
// GET /api/v1/products/import/template?format=json|csv|xlsx
func (h *ImportHandler) GetProductImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	template := ProductImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template, "products")
	case "xlsx":
		h.generateXLSXTemplate(c, template, "Products")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "template": template})
	}
}

func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template ImportTemplate, entity string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.csv", entity))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)

	for _, sample := range template.SampleData {
		row := make([]string, len(template.Columns))
		for i, col := range template.Columns {
			row[i] = sample[col.Name]
		}
		writer.Write(row)
	}
}

func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template ImportTemplate, sheetName string) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	for rowIdx, sample := range template.SampleData {
		for colIdx, col := range template.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, sample[col.Name])
		}
	}

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.xlsx", strings.ToLower(sheetName)))

	f.Write(c.Writer)
}

// ImportProducts imports products from an uploaded CSV or XLSX file,
// upserting by SKU
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	defer file.Close()

	result, err := h.importer.Import(file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFileType):
			errorJSON(c, http.StatusBadRequest, "INVALID_FILE_TYPE", err.Error())
		case errors.Is(err, services.ErrInvalidEncoding):
			errorJSON(c, http.StatusBadRequest, "ENCODING_ERROR", err.Error())
		case errors.Is(err, services.ErrEmptyFile):
			errorJSON(c, http.StatusBadRequest, "EMPTY_FILE", err.Error())
		default:
			errorJSON(c, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		}
		return
	}

	h.logger.WithFields(logrus.Fields{
		"total":   result.TotalRows,
		"success": result.SuccessCount,
		"failed":  result.FailedCount,
		"skipped": result.SkippedCount,
	}).Info("product import completed")

	c.JSON(http.StatusOK, result)
}
