package api

import (
	"net/http"

	"fulfillment-service/internal/shop"

	"github.com/gin-gonic/gin"
)

// RegisterProductRequest registers an inventory item
type RegisterProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// ProductResponse describes an inventory item
type ProductResponse struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Available int    `json:"available"`
}

type restockRequest struct {
	Amount int `json:"amount"`
}

type updatePriceRequest struct {
	Price string `json:"price" binding:"required"`
}

func toProductResponse(item *shop.Item) ProductResponse {
	return ProductResponse{
		Name:      item.Name(),
		Price:     item.Price().String(),
		Available: item.Available(),
	}
}

func (h *Handler) registerProduct(c *gin.Context) {
	var req RegisterProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	price, err := parseDecimal(req.Price)
	if err != nil {
		h.writeError(c, "Invalid price", err)
		return
	}

	item, err := shop.NewItem(req.Name, price, req.Quantity)
	if err != nil {
		h.writeError(c, "Invalid product", err)
		return
	}
	if err := h.catalog.Register(item); err != nil {
		h.writeError(c, "Failed to register product", err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(item))
}

func (h *Handler) listProducts(c *gin.Context) {
	items := h.catalog.List()
	products := make([]ProductResponse, 0, len(items))
	for _, item := range items {
		products = append(products, toProductResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) restockProduct(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.catalog.Get(c.Param("name"))
	if err != nil {
		h.writeError(c, "Product not found", err)
		return
	}
	if err := item.Restock(req.Amount); err != nil {
		h.writeError(c, "Failed to restock product", err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(item))
}

func (h *Handler) updateProductPrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.catalog.Get(c.Param("name"))
	if err != nil {
		h.writeError(c, "Product not found", err)
		return
	}

	price, err := parseDecimal(req.Price)
	if err != nil {
		h.writeError(c, "Invalid price", err)
		return
	}
	if err := item.UpdatePrice(price); err != nil {
		h.writeError(c, "Failed to update price", err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(item))
}
