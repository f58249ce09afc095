package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stocker/internal/models"
)

func TestCreateCategoryDuplicateName(t *testing.T) {
	repo := new(MockInventoryRepository)
	repo.On("CreateCategory", mock.AnythingOfType("*models.Category")).Return(gorm.ErrDuplicatedKey)

	handler := NewInventoryHandler(repo, nil, nil, 20, 100)
	router := gin.New()
	router.POST("/categories", handler.CreateCategory)

	payload, _ := json.Marshal(map[string]string{"name": "Tools"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DUPLICATE_NAME", resp.Error.Code)
	repo.AssertExpectations(t)
}

func TestDeleteCategoryCascades(t *testing.T) {
	repo := new(MockInventoryRepository)
	id := uuid.New()
	repo.On("GetCategoryByID", id).Return(&models.Category{ID: id, Name: "Tools"}, nil)
	repo.On("DeleteCategory", id).Return(nil)

	handler := NewInventoryHandler(repo, nil, nil, 20, 100)
	router := gin.New()
	router.DELETE("/categories/:id", handler.DeleteCategory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/categories/"+id.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Message)
	assert.Equal(t, "Category and its products deleted successfully", *resp.Message)
	repo.AssertExpectations(t)
}

func TestDeleteSupplierDetachesOnly(t *testing.T) {
	repo := new(MockInventoryRepository)
	id := uuid.New()
	repo.On("GetSupplierByID", id).Return(&models.Supplier{ID: id, Name: "Acme"}, nil)
	repo.On("DeleteSupplier", id).Return(nil)

	handler := NewInventoryHandler(repo, nil, nil, 20, 100)
	router := gin.New()
	router.DELETE("/suppliers/:id", handler.DeleteSupplier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/suppliers/"+id.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
