package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"stocker/internal/events"
	"stocker/internal/models"
	"stocker/internal/repository"
)

// File-level import failures. Nothing is written when one of these occurs.
var (
	ErrInvalidFileType = errors.New("only CSV and XLSX files are supported")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrEmptyFile       = errors.New("file contains no data rows")
)

// ImportRowError describes a validation or persistence failure for one row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult summarizes an import run. Rows with a blank SKU are skipped
// silently and counted separately from failures.
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}

// Importer parses an uploaded product sheet and upserts it against the
// inventory by SKU.
type Importer struct {
	repo   repository.InventoryRepositoryInterface
	alerts *events.AlertPublisher
	logger *logrus.Entry
}

func NewImporter(repo repository.InventoryRepositoryInterface, alerts *events.AlertPublisher, logger *logrus.Logger) *Importer {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Importer{
		repo:   repo,
		alerts: alerts,
		logger: log.WithField("component", "importer"),
	}
}

// maybeAlert fires a low-stock alert when an imported row moved the product
// into almost_done or out_of_stock. Fire-and-forget.
func (im *Importer) maybeAlert(previous models.StockStatus, product *models.Product) {
	if im.alerts == nil {
		return
	}
	low := product.StockStatus == models.StockStatusAlmostDone || product.StockStatus == models.StockStatusOutOfStock
	if !low || previous == product.StockStatus {
		return
	}
	p := *product
	go func() {
		_ = im.alerts.PublishLowStock(context.Background(), &p)
	}()
}

// Import reads the uploaded file and applies it row by row. File-level
// failures (extension, encoding, emptiness) abort before any write; row-level
// failures are collected and the import continues with the next row.
func (im *Importer) Import(r io.Reader, filename string) (*ImportResult, error) {
	rows, err := im.parseUpload(r, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return im.process(rows), nil
}

func (im *Importer) parseUpload(r io.Reader, filename string) ([]map[string]string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return im.parseCSV(r)
	case strings.HasSuffix(lower, ".xlsx"):
		return im.parseXLSX(r)
	}
	return nil, ErrInvalidFileType
}

func (im *Importer) parseCSV(r io.Reader) ([]map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []map[string]string
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}
		rows = append(rows, recordToRow(headers, record, lineNum+1))
		lineNum++
	}
	return rows, nil
}

func (im *Importer) parseXLSX(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	excelRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrEmptyFile
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	rows := make([]map[string]string, 0, len(excelRows)-1)
	for rowIdx, excelRow := range excelRows[1:] {
		rows = append(rows, recordToRow(headers, excelRow, rowIdx+2))
	}
	return rows, nil
}

func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}

func recordToRow(headers, record []string, lineNum int) map[string]string {
	row := make(map[string]string, len(headers)+1)
	for i, value := range record {
		if i < len(headers) {
			row[headers[i]] = strings.TrimSpace(value)
		}
	}
	row["_row"] = strconv.Itoa(lineNum)
	return row
}

// unsanitizeCell undoes the export-side CSV-injection escape so that an
// export/import round trip reproduces the original value
func unsanitizeCell(value string) string {
	if len(value) >= 2 && value[0] == '\'' {
		switch value[1] {
		case '=', '+', '-', '@':
			return value[1:]
		}
	}
	return value
}

func (im *Importer) process(rows []map[string]string) *ImportResult {
	result := &ImportResult{
		TotalRows: len(rows),
		Errors:    make([]ImportRowError, 0),
	}

	// The same name maps to a single shared record across the whole run.
	categories := make(map[string]*models.Category)
	suppliers := make(map[string]*models.Supplier)

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		sku := unsanitizeCell(row["sku"])
		if sku == "" {
			result.SkippedCount++
			continue
		}

		if rowErr := im.importRow(row, rowNum, sku, categories, suppliers); rowErr != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		result.SuccessCount++
	}

	result.Success = result.FailedCount == 0
	return result
}

func (im *Importer) importRow(row map[string]string, rowNum int, sku string, categories map[string]*models.Category, suppliers map[string]*models.Supplier) *ImportRowError {
	categoryName := unsanitizeCell(row["category"])
	if categoryName == "" {
		return &ImportRowError{Row: rowNum, Column: "category", Code: "REQUIRED_FIELD", Message: "Category is required"}
	}

	quantity, rowErr := parseIntField(row, "quantity", rowNum)
	if rowErr != nil {
		return rowErr
	}
	reorderLevel, rowErr := parseIntField(row, "reorder level", rowNum)
	if rowErr != nil {
		return rowErr
	}
	costPrice, rowErr := parseDecimalField(row, "cost price", rowNum)
	if rowErr != nil {
		return rowErr
	}
	expiryDate, rowErr := parseDateField(row, "expiry date", rowNum)
	if rowErr != nil {
		return rowErr
	}

	category, ok := categories[categoryName]
	if !ok {
		var err error
		category, err = im.repo.GetOrCreateCategoryByName(categoryName)
		if err != nil {
			return persistenceError(rowNum, "category", err)
		}
		categories[categoryName] = category
	}

	status := models.StockStatus(strings.ToLower(row["stock status"]))
	if !models.ValidStockStatus(status) {
		status = models.DeriveStockStatus(quantity, reorderLevel)
	}

	product, err := im.repo.GetProductBySKU(sku)
	created := false
	previousStatus := models.StockStatusInStock
	switch {
	case err == nil:
		// Upsert: overwrite the sheet-backed fields in place.
		previousStatus = product.StockStatus
		product.Name = unsanitizeCell(row["name"])
		product.CategoryID = category.ID
		product.Description = unsanitizeCell(row["description"])
		product.Quantity = quantity
		product.ReorderLevel = reorderLevel
		product.CostPrice = costPrice
		product.StockStatus = status
		product.ExpiryDate = expiryDate
		if err := im.repo.UpdateProduct(product); err != nil {
			return persistenceError(rowNum, "", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		product = &models.Product{
			SKU:          sku,
			Name:         unsanitizeCell(row["name"]),
			CategoryID:   category.ID,
			Description:  unsanitizeCell(row["description"]),
			Quantity:     quantity,
			ReorderLevel: reorderLevel,
			CostPrice:    costPrice,
			StockStatus:  status,
			ExpiryDate:   expiryDate,
		}
		if err := im.repo.CreateProduct(product); err != nil {
			return persistenceError(rowNum, "", err)
		}
		created = true
	default:
		return persistenceError(rowNum, "", err)
	}

	// An empty suppliers cell leaves existing associations untouched; a
	// non-empty cell replaces the set with exactly the listed suppliers.
	if raw := unsanitizeCell(row["suppliers"]); raw != "" {
		set := make([]models.Supplier, 0, 2)
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			supplier, ok := suppliers[name]
			if !ok {
				var err error
				supplier, err = im.repo.GetOrCreateSupplierByName(name)
				if err != nil {
					return persistenceError(rowNum, "suppliers", err)
				}
				suppliers[name] = supplier
			}
			set = append(set, *supplier)
		}
		if err := im.repo.ReplaceProductSuppliers(product, set); err != nil {
			return persistenceError(rowNum, "suppliers", err)
		}
	}

	im.maybeAlert(previousStatus, product)

	im.logger.WithFields(logrus.Fields{
		"sku":     sku,
		"row":     rowNum,
		"created": created,
	}).Debug("imported product row")
	return nil
}

// parseIntField reads a non-negative integer cell. Blank means zero; a
// malformed or negative value fails the row instead of silently coercing.
func parseIntField(row map[string]string, column string, rowNum int) (int, *ImportRowError) {
	value := row[column]
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, &ImportRowError{
			Row:     rowNum,
			Column:  column,
			Code:    "INVALID_NUMBER",
			Message: fmt.Sprintf("%q is not a valid non-negative integer", value),
		}
	}
	return n, nil
}

func parseDecimalField(row map[string]string, column string, rowNum int) (decimal.Decimal, *ImportRowError) {
	value := row[column]
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		return decimal.Zero, &ImportRowError{
			Row:     rowNum,
			Column:  column,
			Code:    "INVALID_NUMBER",
			Message: fmt.Sprintf("%q is not a valid non-negative number", value),
		}
	}
	return d, nil
}

func parseDateField(row map[string]string, column string, rowNum int) (*time.Time, *ImportRowError) {
	value := row[column]
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, &ImportRowError{
			Row:     rowNum,
			Column:  column,
			Code:    "INVALID_DATE",
			Message: fmt.Sprintf("%q is not a valid date (expected YYYY-MM-DD)", value),
		}
	}
	return &t, nil
}

func persistenceError(rowNum int, column string, err error) *ImportRowError {
	return &ImportRowError{
		Row:     rowNum,
		Column:  column,
		Code:    "PERSISTENCE_ERROR",
		Message: err.Error(),
	}
}
