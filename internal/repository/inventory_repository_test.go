package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"stocker/internal/models"
)

// newDryRunRepo opens a dry-run gorm session backed by the dummy dialector
// and records every query statement it builds, so tests can assert on the
// generated SQL without a database.
func newDryRunRepo(t *testing.T) (*InventoryRepository, *[]string) {
	t.Helper()

	queries := &[]string{}
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	err = db.Callback().Query().After("gorm:query").Register("capture_queries", func(tx *gorm.DB) {
		*queries = append(*queries, tx.Statement.SQL.String())
	})
	require.NoError(t, err)

	return NewInventoryRepository(db), queries
}

func findQuery(queries []string, fragment string) string {
	for _, q := range queries {
		if strings.Contains(q, fragment) {
			return q
		}
	}
	return ""
}

func TestListProductsSelectsFullRowsAfterCount(t *testing.T) {
	repo, queries := newDryRunRepo(t)

	_, _, err := repo.ListProducts(models.ProductFilter{}, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, *queries)

	countSQL := findQuery(*queries, "COUNT")
	require.NotEmpty(t, countSQL)
	assert.Contains(t, countSQL, "DISTINCT", "the count deduplicates joined rows")

	listSQL := findQuery(*queries, "ORDER BY")
	require.NotEmpty(t, listSQL)
	assert.NotContains(t, listSQL, "DISTINCT",
		"the count projection must not leak into the listing query")
	assert.Contains(t, listSQL, "LIMIT")
}

func TestListProductsSupplierFilterJoinsMembership(t *testing.T) {
	repo, queries := newDryRunRepo(t)
	supplierID := uuid.New()

	_, _, err := repo.ListProducts(models.ProductFilter{
		SupplierIDs: []uuid.UUID{supplierID},
	}, 1, 10)
	require.NoError(t, err)

	listSQL := findQuery(*queries, "ORDER BY")
	require.NotEmpty(t, listSQL)
	assert.Contains(t, listSQL, "JOIN product_suppliers")
	assert.Contains(t, listSQL, "ps.supplier_id IN")
	assert.Contains(t, listSQL, "DISTINCT", "membership join deduplicates listed rows")
}

func TestFilterProductsAppliesSharedPredicate(t *testing.T) {
	repo, queries := newDryRunRepo(t)
	categoryID := uuid.New()
	status := models.StockStatusAlmostDone

	_, err := repo.FilterProducts(models.ProductFilter{
		Query:      "widget",
		CategoryID: &categoryID,
		Status:     &status,
	})
	require.NoError(t, err)

	listSQL := findQuery(*queries, "ORDER BY")
	require.NotEmpty(t, listSQL)
	assert.Contains(t, listSQL, "LOWER(products.name) LIKE")
	assert.Contains(t, listSQL, "LOWER(products.sku) LIKE")
	assert.Contains(t, listSQL, "products.category_id")
	assert.Contains(t, listSQL, "products.stock_status")
	assert.NotContains(t, listSQL, "LIMIT", "the export/report set is not paginated")
}
