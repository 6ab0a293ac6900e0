package deliveryControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	Address FullAddress `json:"address" binding:"required"`
}

// POST /delivery/quote
// Always answers 200 when the address is complete: provider failures degrade
// to the default fee with a warning in the body.
func QuoteHandler(client *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		quote, err := client.QuoteWithFallback(c.Request.Context(), req.Address)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

// GET /admin/deliveries/:deliveryID
func StatusHandler(client *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		delivery, err := client.Status(c.Request.Context(), c.Param("deliveryID"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, delivery)
	}
}

// POST /admin/deliveries/:deliveryID/cancel
func CancelHandler(client *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		delivery, err := client.Cancel(c.Request.Context(), c.Param("deliveryID"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, delivery)
	}
}
