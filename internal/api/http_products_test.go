package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"shopadmin/internal/config"
	"shopadmin/internal/entity"
	"shopadmin/internal/model/modeltest"
	"shopadmin/internal/storage"
)

func newProductRouter(handler *HTTPHandler) *gin.Engine {
	r := gin.New()
	r.GET("/products", handler.ListProducts)
	r.POST("/products", handler.CreateProduct)
	r.GET("/products/:id", handler.GetProduct)
	r.PUT("/products/:id", handler.UpdateProduct)
	r.DELETE("/products/:id", handler.DeleteProduct)
	r.POST("/products/:id/image", handler.UploadProductImage)
	r.PUT("/products/bulk-update", handler.BulkUpdateProducts)
	r.POST("/products/bulk-delete", handler.BulkDeleteProducts)
	return r
}

func seedProduct(t *testing.T, repo *modeltest.FakeRepository, name, category string, stock int, status string) *entity.DbProduct {
	t.Helper()
	product := &entity.DbProduct{
		Name:          name,
		Category:      category,
		Price:         19.99,
		StockQuantity: stock,
		Status:        status,
	}
	if err := repo.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

func TestCreateProductDerivesStatus(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := newProductRouter(handler)

	tests := []struct {
		name           string
		stock          int
		expectedStatus string
	}{
		{"有库存默认上架", 5, entity.ProductStatusActive},
		{"零库存默认缺货", 0, entity.ProductStatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := tt.stock
			w := postJSON(t, router, http.MethodPost, "/products", "", entity.ProductCreateRequest{
				Name:          "item-" + tt.name,
				Category:      "shoes",
				Price:         49.0,
				StockQuantity: &stock,
			})
			if w.Code != http.StatusCreated {
				t.Fatalf("expected status 201, got %d (body %s)", w.Code, w.Body.String())
			}
			var response struct {
				Product entity.DbProduct `json:"product"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Product.Status != tt.expectedStatus {
				t.Fatalf("expected status %s, got %s", tt.expectedStatus, response.Product.Status)
			}
		})
	}
}

func TestCreateProductValidation(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := newProductRouter(handler)

	stock := 1
	tests := []struct {
		name    string
		payload entity.ProductCreateRequest
	}{
		{"缺少名称", entity.ProductCreateRequest{Category: "shoes", Price: 10, StockQuantity: &stock}},
		{"缺少分类", entity.ProductCreateRequest{Name: "item", Price: 10, StockQuantity: &stock}},
		{"价格非正", entity.ProductCreateRequest{Name: "item", Category: "shoes", Price: 0, StockQuantity: &stock}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, http.MethodPost, "/products", "", tt.payload)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateProductDuplicateName(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := newProductRouter(handler)
	seedProduct(t, repo, "sneaker", "shoes", 3, entity.ProductStatusActive)

	stock := 1
	w := postJSON(t, router, http.MethodPost, "/products", "", entity.ProductCreateRequest{
		Name:          "sneaker",
		Category:      "shoes",
		Price:         10,
		StockQuantity: &stock,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d (body %s)", w.Code, w.Body.String())
	}
	var response APIError
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Code != ErrCodeProductExists {
		t.Fatalf("expected code %s, got %s", ErrCodeProductExists, response.Code)
	}
}

func TestUpdateProductStockStatusTransitions(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := newProductRouter(handler)

	t.Run("库存清零自动转缺货", func(t *testing.T) {
		product := seedProduct(t, repo, "boots", "shoes", 5, entity.ProductStatusActive)
		zero := 0
		w := postJSON(t, router, http.MethodPut, "/products/"+itoa(product.ID), "", entity.ProductUpdateRequest{
			StockQuantity: &zero,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
		}
		updated, err := repo.GetProduct(context.Background(), product.ID)
		if err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}
		if updated.Status != entity.ProductStatusOutOfStock {
			t.Fatalf("expected out_of_stock, got %s", updated.Status)
		}
	})

	t.Run("补货后自动恢复上架", func(t *testing.T) {
		product := seedProduct(t, repo, "sandals", "shoes", 0, entity.ProductStatusOutOfStock)
		ten := 10
		w := postJSON(t, router, http.MethodPut, "/products/"+itoa(product.ID), "", entity.ProductUpdateRequest{
			StockQuantity: &ten,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
		}
		updated, err := repo.GetProduct(context.Background(), product.ID)
		if err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}
		if updated.Status != entity.ProductStatusActive {
			t.Fatalf("expected active, got %s", updated.Status)
		}
	})

	t.Run("已下架商品清零库存不改状态", func(t *testing.T) {
		product := seedProduct(t, repo, "slippers", "shoes", 5, entity.ProductStatusInactive)
		zero := 0
		w := postJSON(t, router, http.MethodPut, "/products/"+itoa(product.ID), "", entity.ProductUpdateRequest{
			StockQuantity: &zero,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
		}
		updated, err := repo.GetProduct(context.Background(), product.ID)
		if err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}
		if updated.Status != entity.ProductStatusInactive {
			t.Fatalf("expected inactive to stick, got %s", updated.Status)
		}
	})
}

func TestBulkProductOperations(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := newProductRouter(handler)

	first := seedProduct(t, repo, "tee", "tops", 5, entity.ProductStatusActive)
	second := seedProduct(t, repo, "hoodie", "tops", 5, entity.ProductStatusActive)
	seedProduct(t, repo, "jeans", "bottoms", 5, entity.ProductStatusActive)

	status := entity.ProductStatusInactive
	w := postJSON(t, router, http.MethodPut, "/products/bulk-update", "", entity.ProductBulkUpdateRequest{
		ProductIDs: []uint{first.ID, second.ID},
		Updates:    entity.ProductUpdateRequest{Status: &status},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}
	updated, err := repo.GetProduct(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if updated.Status != entity.ProductStatusInactive {
		t.Fatalf("expected inactive, got %s", updated.Status)
	}

	w = postJSON(t, router, http.MethodPost, "/products/bulk-delete", "", entity.ProductBulkDeleteRequest{
		ProductIDs: []uint{first.ID, second.ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}
	if _, err := repo.GetProduct(context.Background(), first.ID); err == nil {
		t.Fatal("expected product to be deleted")
	}

	t.Run("空ID列表被拒绝", func(t *testing.T) {
		w := postJSON(t, router, http.MethodPost, "/products/bulk-delete", "", entity.ProductBulkDeleteRequest{})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d (body %s)", w.Code, w.Body.String())
		}
	})
}

func TestUploadProductImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := modeltest.NewFakeRepository()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	cfg := config.Config{
		AppEnv:               "development",
		JWTSecret:            testJWTSecret,
		JWTExpirationMinutes: 60,
		JWTLongLivedDays:     30,
		StoragePublicBaseURL: "/files",
	}
	handler, err := NewHTTPHandler(cfg, repo, store)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	router := newProductRouter(handler)

	product := seedProduct(t, repo, "sneaker", "shoes", 5, entity.ProductStatusActive)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-png-bytes")); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/products/"+itoa(product.ID)+"/image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}
	var response struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !strings.HasPrefix(response.ImageURL, "/files/products/") {
		t.Fatalf("expected public image url, got %q", response.ImageURL)
	}
	if !strings.HasSuffix(response.ImageURL, ".png") {
		t.Fatalf("expected png extension, got %q", response.ImageURL)
	}

	updated, err := repo.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if updated.ImageURL != response.ImageURL {
		t.Fatalf("expected image url to be persisted, got %q", updated.ImageURL)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
