package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocker/internal/models"
)

// InventoryRepositoryInterface is implemented by the gorm repository and by
// test doubles. It exposes the persistence operations the handlers and
// services need: CRUD, get-or-create, filter-by-predicate and the dashboard
// read queries.
type InventoryRepositoryInterface interface {
	// Products
	CreateProduct(product *models.Product) error
	GetProductByID(id uuid.UUID) (*models.Product, error)
	GetProductBySKU(sku string) (*models.Product, error)
	ListProducts(filter models.ProductFilter, page, limit int) ([]models.Product, int64, error)
	FilterProducts(filter models.ProductFilter) ([]models.Product, error)
	UpdateProduct(product *models.Product) error
	DeleteProduct(id uuid.UUID) error
	ReplaceProductSuppliers(product *models.Product, suppliers []models.Supplier) error

	// Categories
	CreateCategory(category *models.Category) error
	GetCategoryByID(id uuid.UUID) (*models.Category, error)
	GetOrCreateCategoryByName(name string) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	UpdateCategory(category *models.Category) error
	DeleteCategory(id uuid.UUID) error

	// Suppliers
	CreateSupplier(supplier *models.Supplier) error
	GetSupplierByID(id uuid.UUID) (*models.Supplier, error)
	GetOrCreateSupplierByName(name string) (*models.Supplier, error)
	ListSuppliers() ([]models.Supplier, error)
	UpdateSupplier(supplier *models.Supplier) error
	DeleteSupplier(id uuid.UUID) error

	// Dashboard reads
	CountProducts() (int64, error)
	CountCategories() (int64, error)
	CountLowStock() (int64, error)
	CountOutOfStock() (int64, error)
	LowStockProducts(limit int) ([]models.Product, error)
	ExpiringProducts(within time.Duration, limit int) ([]models.Product, error)
	RecentActivity(limit int) ([]models.ProductActivity, error)
	SupplierPerformance(limit int) ([]models.SupplierPerformance, error)
	StatusBreakdown() ([]models.StatusCount, error)
	TopProductsByQuantity(limit int) ([]models.TopProduct, error)
	ActivityByDay(days int) ([]models.DailyActivity, error)
}

type InventoryRepository struct {
	db *gorm.DB
}

var _ InventoryRepositoryInterface = (*InventoryRepository)(nil)

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// applyFilter translates a ProductFilter into query conditions. Supplier
// matching is membership: any of the selected suppliers.
func (r *InventoryRepository) applyFilter(query *gorm.DB, filter models.ProductFilter) *gorm.DB {
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ?", like, like)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("products.stock_status = ?", *filter.Status)
	}
	if len(filter.SupplierIDs) > 0 {
		query = query.
			Joins("JOIN product_suppliers ps ON ps.product_id = products.id").
			Where("ps.supplier_id IN ?", filter.SupplierIDs).
			Distinct("products.*")
	}
	return query
}

// ========== Product Operations ==========

func (r *InventoryRepository) CreateProduct(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *InventoryRepository) GetProductByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").Preload("Suppliers").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *InventoryRepository) GetProductBySKU(sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").Preload("Suppliers").
		Where("sku = ?", sku).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts retrieves products matching the filter with pagination
func (r *InventoryRepository) ListProducts(filter models.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.applyFilter(r.db.Model(&models.Product{}), filter)

	// Count on an isolated session: the DISTINCT id projection must not
	// leak into the statement the Find below reuses.
	if err := query.Session(&gorm.Session{}).Distinct("products.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Preload("Category").Preload("Suppliers").
		Order("products.name ASC, products.sku ASC").
		Find(&products).Error
	return products, total, err
}

// FilterProducts retrieves the full filtered set without pagination. The CSV
// export and the report builders go through this so their data reconciles
// with the listing for the same filter.
func (r *InventoryRepository) FilterProducts(filter models.ProductFilter) ([]models.Product, error) {
	var products []models.Product
	err := r.applyFilter(r.db.Model(&models.Product{}), filter).
		Preload("Category").Preload("Suppliers").
		Order("products.name ASC, products.sku ASC").
		Find(&products).Error
	return products, err
}

func (r *InventoryRepository) UpdateProduct(product *models.Product) error {
	product.UpdatedAt = time.Now()
	return r.db.Omit("Suppliers", "Category").Save(product).Error
}

func (r *InventoryRepository) DeleteProduct(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_suppliers WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
}

// ReplaceProductSuppliers replaces the product's supplier set with exactly
// the given suppliers
func (r *InventoryRepository) ReplaceProductSuppliers(product *models.Product, suppliers []models.Supplier) error {
	if err := r.db.Model(product).Association("Suppliers").Replace(suppliers); err != nil {
		return err
	}
	product.Suppliers = suppliers
	return nil
}

// ========== Category Operations ==========

func (r *InventoryRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *InventoryRepository) GetCategoryByID(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetOrCreateCategoryByName resolves a category by name, creating it when
// absent. Idempotent: the same name always maps to the same record.
func (r *InventoryRepository) GetOrCreateCategoryByName(name string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where(models.Category{Name: name}).FirstOrCreate(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *InventoryRepository) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *InventoryRepository) UpdateCategory(category *models.Category) error {
	category.UpdatedAt = time.Now()
	return r.db.Save(category).Error
}

// DeleteCategory deletes a category and all of its products
func (r *InventoryRepository) DeleteCategory(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var productIDs []uuid.UUID
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			if err := tx.Exec("DELETE FROM product_suppliers WHERE product_id IN ?", productIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Product{}, "category_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Category{}, "id = ?", id).Error
	})
}

// ========== Supplier Operations ==========

func (r *InventoryRepository) CreateSupplier(supplier *models.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *InventoryRepository) GetSupplierByID(id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.Where("id = ?", id).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// GetOrCreateSupplierByName resolves a supplier by name, creating it when absent
func (r *InventoryRepository) GetOrCreateSupplierByName(name string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.Where(models.Supplier{Name: name}).FirstOrCreate(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *InventoryRepository) ListSuppliers() ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *InventoryRepository) UpdateSupplier(supplier *models.Supplier) error {
	supplier.UpdatedAt = time.Now()
	return r.db.Save(supplier).Error
}

// DeleteSupplier deletes a supplier, detaching its product relations only
func (r *InventoryRepository) DeleteSupplier(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_suppliers WHERE supplier_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Supplier{}, "id = ?", id).Error
	})
}

// ========== Dashboard Reads ==========

func (r *InventoryRepository) CountProducts() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

func (r *InventoryRepository) CountCategories() (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Count(&count).Error
	return count, err
}

func (r *InventoryRepository) CountLowStock() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("quantity <= reorder_level").
		Count(&count).Error
	return count, err
}

func (r *InventoryRepository) CountOutOfStock() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("stock_status = ? OR quantity <= 0", models.StockStatusOutOfStock).
		Count(&count).Error
	return count, err
}

func (r *InventoryRepository) LowStockProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Category").
		Where("quantity <= reorder_level").
		Order("quantity ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *InventoryRepository) ExpiringProducts(within time.Duration, limit int) ([]models.Product, error) {
	var products []models.Product
	now := time.Now()
	err := r.db.Preload("Category").
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", now, now.Add(within)).
		Order("expiry_date ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *InventoryRepository) RecentActivity(limit int) ([]models.ProductActivity, error) {
	var rows []models.ProductActivity
	err := r.db.Model(&models.Product{}).
		Select("name, sku, updated_at").
		Order("updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *InventoryRepository) SupplierPerformance(limit int) ([]models.SupplierPerformance, error) {
	var rows []models.SupplierPerformance
	err := r.db.Raw(`
		SELECT s.id AS supplier_id, s.name, COUNT(ps.product_id) AS product_count
		FROM suppliers s
		LEFT JOIN product_suppliers ps ON ps.supplier_id = s.id
		GROUP BY s.id, s.name
		ORDER BY product_count DESC, s.name ASC
		LIMIT ?`, limit).Scan(&rows).Error
	return rows, err
}

func (r *InventoryRepository) StatusBreakdown() ([]models.StatusCount, error) {
	var rows []models.StatusCount
	err := r.db.Model(&models.Product{}).
		Select("stock_status AS status, COUNT(*) AS count").
		Group("stock_status").
		Order("stock_status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *InventoryRepository) TopProductsByQuantity(limit int) ([]models.TopProduct, error) {
	var rows []models.TopProduct
	err := r.db.Model(&models.Product{}).
		Select("name, quantity").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ActivityByDay counts product updates per day for the last days days,
// oldest first
func (r *InventoryRepository) ActivityByDay(days int) ([]models.DailyActivity, error) {
	rows := make([]models.DailyActivity, 0, days)
	now := time.Now()
	// Local calendar days, not UTC truncation: bucket edges follow the
	// server's zone so "today" matches what the dashboard user sees.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		next := day.AddDate(0, 0, 1)

		var count int64
		if err := r.db.Model(&models.Product{}).
			Where("updated_at >= ? AND updated_at < ?", day, next).
			Count(&count).Error; err != nil {
			return nil, err
		}
		rows = append(rows, models.DailyActivity{Label: day.Format("Jan 02"), Count: count})
	}
	return rows, nil
}
