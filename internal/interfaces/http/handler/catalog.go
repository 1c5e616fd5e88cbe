package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shadecraft/backend/internal/domain/catalog"
)

// CatalogHandler serves the product catalog
type CatalogHandler struct {
	BaseHandler
	catalog catalog.Catalog
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productCatalog catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: productCatalog}
}

// ListProducts handles GET /catalog/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.FindAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, products, len(products))
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
