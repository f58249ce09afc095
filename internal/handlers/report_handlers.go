package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"stocker/internal/events"
	"stocker/internal/models"
	"stocker/internal/repository"
	"stocker/internal/services"
)

const (
	dashboardCacheKey = "stocker:dashboard"
	dashboardCacheTTL = 60 * time.Second

	lowStockScanLimit = 1000
)

// ReportHandler serves the KPI reports, the dashboard and the low-stock
// alert check
type ReportHandler struct {
	repo   repository.InventoryRepositoryInterface
	redis  *redis.Client
	alerts *events.AlertPublisher
	logger *logrus.Entry
}

func NewReportHandler(repo repository.InventoryRepositoryInterface, redisClient *redis.Client, alerts *events.AlertPublisher, logger *logrus.Logger) *ReportHandler {
	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReportHandler{
		repo:   repo,
		redis:  redisClient,
		alerts: alerts,
		logger: log.WithField("component", "report-handler"),
	}
}

// InventoryReport builds the per-category KPI report over the same filtered
// set as the listing
// GET /api/v1/reports/inventory?format=json|csv&q=&category=&supplier=&status=
func (h *ReportHandler) InventoryReport(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	products, err := h.repo.FilterProducts(filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to load products for inventory report")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to build inventory report")
		return
	}

	report := services.BuildInventoryReport(products, filter, time.Now())

	if c.DefaultQuery("format", "json") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", "attachment; filename="+services.ExportFilename("inventory_report", report.GeneratedAt))
		c.Status(http.StatusOK)
		if err := services.WriteInventoryReportCSV(c.Writer, report); err != nil {
			h.logger.WithError(err).Error("failed to write inventory report CSV")
		}
		return
	}

	c.JSON(http.StatusOK, models.InventoryReportResponse{
		Success: true,
		Data:    report,
		Chart:   services.InventoryChart(report),
	})
}

// SupplierReport builds the per-supplier KPI report over the same filtered
// set as the listing
// GET /api/v1/reports/suppliers?format=json|csv&q=&category=&supplier=&status=
func (h *ReportHandler) SupplierReport(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	products, err := h.repo.FilterProducts(filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to load products for supplier report")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to build supplier report")
		return
	}

	report := services.BuildSupplierReport(products, filter, time.Now())

	if c.DefaultQuery("format", "json") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", "attachment; filename="+services.ExportFilename("supplier_report", report.GeneratedAt))
		c.Status(http.StatusOK)
		if err := services.WriteSupplierReportCSV(c.Writer, report); err != nil {
			h.logger.WithError(err).Error("failed to write supplier report CSV")
		}
		return
	}

	c.JSON(http.StatusOK, models.SupplierReportResponse{
		Success: true,
		Data:    report,
		Chart:   services.SupplierChart(report),
	})
}

// Dashboard returns headline stats, tables and chart data. Briefly cached in
// Redis when a client is configured; degrades gracefully without one.
// GET /api/v1/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	if h.redis != nil {
		if cached, err := h.redis.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
	}

	dashboard, err := h.buildDashboard()
	if err != nil {
		h.logger.WithError(err).Error("failed to build dashboard")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to build dashboard")
		return
	}

	response := models.DashboardResponse{Success: true, Data: dashboard}

	if h.redis != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := h.redis.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL).Err(); err != nil {
				h.logger.WithError(err).Debug("failed to cache dashboard")
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *ReportHandler) buildDashboard() (*models.Dashboard, error) {
	totalProducts, err := h.repo.CountProducts()
	if err != nil {
		return nil, err
	}
	totalCategories, err := h.repo.CountCategories()
	if err != nil {
		return nil, err
	}
	lowStock, err := h.repo.CountLowStock()
	if err != nil {
		return nil, err
	}
	outOfStock, err := h.repo.CountOutOfStock()
	if err != nil {
		return nil, err
	}
	lowStockRows, err := h.repo.LowStockProducts(10)
	if err != nil {
		return nil, err
	}
	expiringRows, err := h.repo.ExpiringProducts(30*24*time.Hour, 10)
	if err != nil {
		return nil, err
	}
	recent, err := h.repo.RecentActivity(10)
	if err != nil {
		return nil, err
	}
	supplierPerf, err := h.repo.SupplierPerformance(10)
	if err != nil {
		return nil, err
	}
	statusBreakdown, err := h.repo.StatusBreakdown()
	if err != nil {
		return nil, err
	}
	topProducts, err := h.repo.TopProductsByQuantity(6)
	if err != nil {
		return nil, err
	}
	daily, err := h.repo.ActivityByDay(7)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Stats: models.DashboardStats{
			TotalProducts:   totalProducts,
			TotalCategories: totalCategories,
			LowStock:        lowStock,
			OutOfStock:      outOfStock,
		},
		LowStockRows:    lowStockRows,
		ExpiringRows:    expiringRows,
		RecentActivity:  recent,
		SupplierPerf:    supplierPerf,
		ChartStatus:     statusBreakdown,
		ChartTopProduct: topProducts,
		ChartDaily:      daily,
	}, nil
}

// CheckLowStock scans for products at or below their reorder level and
// publishes an alert for each. Publishing failures are logged only.
// POST /api/v1/alerts/check
func (h *ReportHandler) CheckLowStock(c *gin.Context) {
	products, err := h.repo.LowStockProducts(lowStockScanLimit)
	if err != nil {
		h.logger.WithError(err).Error("failed to scan for low stock")
		errorJSON(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to scan for low stock products")
		return
	}

	if h.alerts != nil {
		for i := range products {
			p := products[i]
			go func() {
				_ = h.alerts.PublishLowStock(context.Background(), &p)
			}()
		}
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    products,
		Message: stringPtr("Low stock check completed"),
	})
}
