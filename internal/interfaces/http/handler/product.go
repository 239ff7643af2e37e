package handler

import (
	"context"
	"strconv"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductService is the catalog surface the product endpoints use
type ProductService interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)
	LowStock(ctx context.Context, limit int) ([]catalogapp.ProductResponse, error)
}

// ProductStockReader reads the ledger view of a product
type ProductStockReader interface {
	ProductStock(ctx context.Context, productID uuid.UUID) (*inventoryapp.ProductStockResponse, error)
}

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	products ProductService
	stock    ProductStockReader
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductService, stock ProductStockReader) *ProductHandler {
	return &ProductHandler{products: products, stock: stock}
}

// Create godoc
// @Summary      Create a new product
// @Tags         products
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetByID godoc
// @Summary      Get a product by id
// @Tags         products
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	supplierID, ok := h.queryUUID(c, "supplier_id")
	if !ok {
		return
	}
	filter.SupplierID = supplierID

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// LowStock lists products at or below their minimum stock level
func (h *ProductHandler) LowStock(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > catalogapp.DefaultLowStockLimit {
			h.BadRequest(c, "limit must be between 1 and "+strconv.Itoa(catalogapp.DefaultLowStockLimit))
			return
		}
		limit = n
	}
	products, err := h.products.LowStock(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Stock returns the ledger total and entries of a product
func (h *ProductHandler) Stock(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	stock, err := h.stock.ProductStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}
