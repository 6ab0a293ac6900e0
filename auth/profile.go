package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type profileInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

// GET /me
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		var customer models.Customer
		if err := db.First(&customer, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customer"})
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

// PUT /me
// Name and phone are what the kitchen and the courier need; everything else
// is optional.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		var input profileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var customer models.Customer
		if err := db.First(&customer, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customer"})
			return
		}

		customer.Name = input.Name
		customer.Email = input.Email
		customer.Phone = input.Phone
		customer.Address = input.Address
		if err := db.Save(&customer).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}
