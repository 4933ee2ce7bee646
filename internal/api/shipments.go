package api

import (
	"net/http"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type batchItemResponse struct {
	ShippingID string                 `json:"shipping_id"`
	Result     *service.ProcessResult `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// getShipment returns the stored record without evaluating it
func (h *Handler) getShipment(c *gin.Context) {
	shipment, err := h.shipping.GetShipping(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "Shipment not found", err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *Handler) processShipment(c *gin.Context) {
	result, err := h.shipping.ProcessShipping(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "Failed to process shipment", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) processShipmentBatch(c *gin.Context) {
	results, err := h.shipping.ProcessShippingBatch(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to process shipment batch", err)
		return
	}

	items := make([]batchItemResponse, 0, len(results))
	for _, r := range results {
		item := batchItemResponse{ShippingID: r.ShippingID, Result: r.Result}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (h *Handler) listOrderShipments(c *gin.Context) {
	shipments, err := h.shipments.ListShipmentsByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "Failed to list shipments", err)
		return
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}
