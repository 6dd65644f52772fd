package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/despensa_api/internal/models"
	"github.com/GTDGit/despensa_api/internal/service"
	"github.com/GTDGit/despensa_api/internal/utils"
)

// ProductHandler handles product HTTP endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

type deltaRequest struct {
	ID    int              `json:"id" binding:"required"`
	Delta *decimal.Decimal `json:"delta" binding:"required"`
}

type categoryRequest struct {
	ID          int    `json:"id" binding:"required"`
	NewCategory string `json:"newCategory"`
}

// ListProducts handles GET /api/products?category=&search=&sort=&order=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	q, err := service.NewListQuery(c.Query("category"), c.Query("search"), c.Query("sort"), c.Query("order"))
	if err != nil {
		respondError(c, err)
		return
	}

	products, err := h.productService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithTotal(c, http.StatusOK, "Products retrieved", models.Views(products), len(products))
}

// GetProduct handles GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", p.View())
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	p, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Product created", p.View())
}

// ApplyDelta handles PUT /api/products/update {id, delta}: the stock change
// and the agotados transition in one call.
func (h *ProductHandler) ApplyDelta(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "id and numeric delta are required")
		return
	}

	p, err := h.productService.ApplyDelta(c.Request.Context(), req.ID, *req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Quantity updated", p.View())
}

// AdjustQuantity handles PUT /api/products/adjust {id, delta}. The category
// is left as is.
func (h *ProductHandler) AdjustQuantity(c *gin.Context) {
	var req deltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "id and numeric delta are required")
		return
	}

	p, err := h.productService.AdjustQuantity(c.Request.Context(), req.ID, *req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Quantity adjusted", p.View())
}

// SetCategory handles PUT /api/products/update-category {id, newCategory}
func (h *ProductHandler) SetCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	p, err := h.productService.SetCategory(c.Request.Context(), req.ID, req.NewCategory)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Category updated", p.View())
}

// EditProduct handles PUT /api/products/update-edit {id, name, quantity, category, step}
func (h *ProductHandler) EditProduct(c *gin.Context) {
	var req service.EditProductRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	p, err := h.productService.FullEdit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product updated", p.View())
}

// Consume handles POST /api/products/:id/consume
func (h *ProductHandler) Consume(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := h.productService.Consume(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product consumed", p.View())
}

// Restock handles POST /api/products/:id/restock
func (h *ProductHandler) Restock(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := h.productService.Restock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product restocked", p.View())
}

// DeleteProduct handles DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product deleted", gin.H{"id": id})
}

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return 0, false
	}
	return id, true
}
