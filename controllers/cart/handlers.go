package cartControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

func ownerID(c *gin.Context) (string, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	id, ok := val.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return id, true
}

// GET /cart
func GetCart(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		cart, subtotal, err := store.Get(c.Request.Context(), owner)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"lines": cart.Lines, "subtotal": subtotal})
	}
}

type addLineInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// POST /cart
func AddLine(db *gorm.DB, store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		var input addLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ? AND active = true", input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}

		line, err := store.Add(c.Request.Context(), owner, product, input.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		c.JSON(http.StatusCreated, line)
	}
}

type updateQuantityInput struct {
	Delta int `json:"delta" binding:"required"`
}

// PATCH /cart/:lineID
func UpdateLineQuantity(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		var input updateQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		line, err := store.UpdateQuantity(c.Request.Context(), owner, c.Param("lineID"), input.Delta)
		if errors.Is(err, ErrLineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart line not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart line"})
			return
		}
		c.JSON(http.StatusOK, line)
	}
}

// DELETE /cart/:lineID
func RemoveLine(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		err := store.Remove(c.Request.Context(), owner, c.Param("lineID"))
		if errors.Is(err, ErrLineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart line not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart line"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart line removed"})
	}
}

// DELETE /cart
func ClearCart(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		if err := store.Clear(c.Request.Context(), owner); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
