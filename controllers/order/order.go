package orderControllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var orderStatuses = []models.OrderStatus{
	models.OrderStatusNew,
	models.OrderStatusAccepted,
	models.OrderStatusInProduction,
	models.OrderStatusReady,
	models.OrderStatusOutForDelivery,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
}

// MapOrderStatus parses a status value. Any known value is accepted: staff
// may move an order to any state, the enum itself is the source of truth.
func MapOrderStatus(status string) (models.OrderStatus, error) {
	needle := models.OrderStatus(strings.ToLower(status))
	for _, s := range orderStatuses {
		if s == needle {
			return s, nil
		}
	}
	return "", errors.New("invalid order status")
}

// GET /orders (admin)
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Customer").
			Preload("Items").
			Preload("Items.Product").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /my-orders (customer, from JWT)
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var orders []models.Order
		if err := db.
			Where("customer_id = ?", userIDVal.(string)).
			Preload("Items").
			Preload("Items.Product").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		var order models.Order
		if err := db.
			Preload("Customer").
			Preload("Items").
			Preload("Items.Product").
			First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /admin/orders/:orderID/status
// Terminal orders (delivered/cancelled) are frozen; anything else accepts
// any known status value and notifies watchers.
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := MapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if order.Status.IsTerminal() {
			c.JSON(http.StatusConflict, gin.H{"error": "order is in a terminal status"})
			return
		}

		if err := db.Model(&order).Update("status", newStatus).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		order.Status = newStatus

		if newStatus == models.OrderStatusAccepted {
			if err := deductStock(db, order.Items); err != nil {
				// Stock bookkeeping is advisory; the order is already accepted.
				log.Printf("order %s: stock deduction failed: %v", order.ID, err)
			}
		}

		BroadcastOrder(order)
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "status": newStatus})
	}
}

// deductStock consumes recipe ingredients for every item of an accepted
// order.
func deductStock(db *gorm.DB, items []models.OrderItem) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			var recipes []models.Recipe
			if err := tx.Where("product_id = ?", item.ProductID).Find(&recipes).Error; err != nil {
				return err
			}
			for _, recipe := range recipes {
				var ingredient models.Ingredient
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					First(&ingredient, "id = ?", recipe.IngredientID).Error; err != nil {
					return err
				}
				ingredient.Quantity -= recipe.QuantityUsed * float64(item.Quantity)
				if err := tx.Save(&ingredient).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
