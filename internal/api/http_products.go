package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shopadmin/internal/entity"
	"shopadmin/internal/storage"
)

// 上传商品图片的大小上限
const maxProductImageBytes = 10 << 20

// ListProducts 商品列表（带筛选和分页）
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	var query entity.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 50
	}
	if query.PageSize > 200 {
		query.PageSize = 200
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	products, meta, err := h.repo.ListProducts(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list products")
		InternalError(c, "failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Meta:     meta,
	})
}

// GetProduct 商品详情
func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeProductNotFound, "product not found")
			return
		}
		logrus.WithError(err).Error("failed to load product")
		InternalError(c, "failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct 创建商品
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req entity.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		MissingField(c, "name")
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		MissingField(c, "category")
		return
	}
	if req.Price <= 0 {
		BadRequest(c, ErrCodeInvalidRequest, "price must be greater than 0")
		return
	}

	stock := 0
	if req.StockQuantity != nil {
		stock = *req.StockQuantity
	}
	if stock < 0 {
		BadRequest(c, ErrCodeInvalidRequest, "stock quantity cannot be negative")
		return
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		// 未显式指定时根据库存推导状态
		if stock > 0 {
			status = entity.ProductStatusActive
		} else {
			status = entity.ProductStatusOutOfStock
		}
	}

	product := &entity.DbProduct{
		Name:            name,
		ImageURL:        strings.TrimSpace(req.ImageURL),
		Category:        category,
		Subcategory:     strings.TrimSpace(req.Subcategory),
		Description:     req.Description,
		Price:           req.Price,
		IsNewest:        req.IsNewest,
		IsPopular:       req.IsPopular,
		DiscountPercent: req.DiscountPercent,
		DiscountStart:   req.DiscountStart,
		DiscountEnd:     req.DiscountEnd,
		StockQuantity:   stock,
		Status:          status,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ErrorResponse(c, http.StatusConflict, ErrCodeProductExists, "product with this name already exists")
			return
		}
		logrus.WithError(err).Error("failed to create product")
		InternalError(c, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct 更新商品
func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	if req.Price != nil && *req.Price <= 0 {
		BadRequest(c, ErrCodeInvalidRequest, "price must be greater than 0")
		return
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		BadRequest(c, ErrCodeInvalidRequest, "stock quantity cannot be negative")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	existing, err := h.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeProductNotFound, "product not found")
			return
		}
		logrus.WithError(err).Error("failed to load product for update")
		InternalError(c, "failed to update product")
		return
	}

	updates := productUpdatesFromRequest(req)

	// 库存变化时自动调整上下架状态
	if req.StockQuantity != nil && req.Status == nil {
		if *req.StockQuantity == 0 && existing.Status != entity.ProductStatusInactive {
			status := entity.ProductStatusOutOfStock
			updates.Status = &status
		} else if *req.StockQuantity > 0 && existing.Status == entity.ProductStatusOutOfStock {
			status := entity.ProductStatusActive
			updates.Status = &status
		}
	}

	if updates.IsEmpty() {
		c.JSON(http.StatusOK, gin.H{
			"message": "Product updated successfully",
			"product": existing,
		})
		return
	}

	if err := h.repo.UpdateProduct(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ErrorResponse(c, http.StatusConflict, ErrCodeProductExists, "product with this name already exists")
			return
		}
		logrus.WithError(err).Error("failed to update product")
		InternalError(c, "failed to update product")
		return
	}

	updated, err := h.repo.GetProduct(ctx, id)
	if err != nil {
		logrus.WithError(err).Error("failed to reload product after update")
		InternalError(c, "failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": updated,
	})
}

// DeleteProduct 删除商品
func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeProductNotFound, "product not found")
			return
		}
		logrus.WithError(err).Error("failed to load product for delete")
		InternalError(c, "failed to delete product")
		return
	}

	if err := h.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeProductNotFound, "product not found")
			return
		}
		logrus.WithError(err).Error("failed to delete product")
		InternalError(c, "failed to delete product")
		return
	}

	h.removeStoredImage(ctx, product.ImageURL)

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// BulkUpdateProducts 批量更新商品
func (h *HTTPHandler) BulkUpdateProducts(c *gin.Context) {
	var req entity.ProductBulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	if len(req.ProductIDs) == 0 {
		MissingField(c, "product_ids")
		return
	}

	// 批量操作只允许改分类、标记和状态这类共性字段
	updates := entity.ProductUpdates{
		Category:        req.Updates.Category,
		Subcategory:     req.Updates.Subcategory,
		IsNewest:        req.Updates.IsNewest,
		IsPopular:       req.Updates.IsPopular,
		DiscountPercent: req.Updates.DiscountPercent,
		Status:          req.Updates.Status,
	}
	if updates.IsEmpty() {
		BadRequest(c, ErrCodeInvalidRequest, "no fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	affected, err := h.repo.BulkUpdateProducts(ctx, req.ProductIDs, updates)
	if err != nil {
		logrus.WithError(err).Error("failed to bulk update products")
		InternalError(c, "failed to bulk update products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("Successfully updated %d products", affected),
		"affectedRows": affected,
	})
}

// BulkDeleteProducts 批量删除商品
func (h *HTTPHandler) BulkDeleteProducts(c *gin.Context) {
	var req entity.ProductBulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	if len(req.ProductIDs) == 0 {
		MissingField(c, "product_ids")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	affected, err := h.repo.BulkDeleteProducts(ctx, req.ProductIDs)
	if err != nil {
		logrus.WithError(err).Error("failed to bulk delete products")
		InternalError(c, "failed to bulk delete products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("Successfully deleted %d products", affected),
		"affectedRows": affected,
	})
}

// UploadProductImage 上传商品主图并回写 image_url
func (h *HTTPHandler) UploadProductImage(c *gin.Context) {
	if h.storage == nil {
		ServiceUnavailable(c, "storage not available")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		MissingField(c, "image")
		return
	}
	if fileHeader.Size > maxProductImageBytes {
		BadRequest(c, ErrCodeInvalidRequest, "image exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("failed to open uploaded image")
		InternalError(c, "failed to read image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProductImageBytes+1))
	if err != nil {
		logrus.WithError(err).Error("failed to read uploaded image")
		InternalError(c, "failed to read image")
		return
	}
	if len(data) == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "image is empty")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	product, err := h.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeProductNotFound, "product not found")
			return
		}
		logrus.WithError(err).Error("failed to load product for image upload")
		InternalError(c, "failed to upload image")
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	key, err := h.storage.Save(ctx, data, storage.SaveOptions{
		Category:  "products",
		Extension: ext,
		BaseName:  fmt.Sprintf("product-%d", product.ID),
	})
	if err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Error("failed to store product image")
		InternalError(c, "failed to store image")
		return
	}

	imageURL := h.publicFileURL(key)
	if err := h.repo.UpdateProduct(ctx, product.ID, entity.ProductUpdates{ImageURL: &imageURL}); err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Error("failed to save image url")
		InternalError(c, "failed to save image url")
		return
	}

	if product.ImageURL != imageURL {
		h.removeStoredImage(ctx, product.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Image uploaded successfully",
		"image_url": imageURL,
	})
}

// removeStoredImage 尽力清理被替换或随商品删除的旧图片，失败只记日志。
func (h *HTTPHandler) removeStoredImage(ctx context.Context, imageURL string) {
	if h.storage == nil {
		return
	}
	key := h.storedObjectKey(imageURL)
	if key == "" {
		return
	}
	if err := h.storage.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to delete stored image")
	}
}

// storedObjectKey 把公开 URL 还原为存储 key，外链图片返回空串
func (h *HTTPHandler) storedObjectKey(imageURL string) string {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return ""
	}
	if !strings.HasPrefix(imageURL, h.storagePublicBase+"/") {
		return ""
	}
	return strings.TrimPrefix(imageURL, h.storagePublicBase+"/")
}

func productUpdatesFromRequest(req entity.ProductUpdateRequest) entity.ProductUpdates {
	updates := entity.ProductUpdates{
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		Price:           req.Price,
		IsNewest:        req.IsNewest,
		IsPopular:       req.IsPopular,
		DiscountPercent: req.DiscountPercent,
		DiscountStart:   req.DiscountStart,
		DiscountEnd:     req.DiscountEnd,
		StockQuantity:   req.StockQuantity,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		updates.Name = &trimmed
	}
	if req.Category != nil {
		trimmed := strings.TrimSpace(*req.Category)
		updates.Category = &trimmed
	}
	if req.Subcategory != nil {
		trimmed := strings.TrimSpace(*req.Subcategory)
		updates.Subcategory = &trimmed
	}
	if req.Status != nil {
		trimmed := strings.TrimSpace(*req.Status)
		updates.Status = &trimmed
	}
	return updates
}
