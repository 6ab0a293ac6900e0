package adminControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
	"github.com/Killzin1000/tarsi-sweet-hub/pricing"
)

type couponInput struct {
	Code         string     `json:"code" binding:"required"`
	PercentOff   *int       `json:"percent_off,omitempty" binding:"omitempty,gt=0,lte=100"`
	FlatOff      *float64   `json:"flat_off,omitempty" binding:"omitempty,gt=0"`
	MinimumSpend *float64   `json:"minimum_spend,omitempty" binding:"omitempty,gte=0"`
	ExpiresOn    *time.Time `json:"expires_on,omitempty"`
	Active       *bool      `json:"active,omitempty"`
}

// GET /admin/coupons
func GetCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupons []models.Coupon
		if err := db.Order("created_at DESC").Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coupons"})
			return
		}
		c.JSON(http.StatusOK, coupons)
	}
}

// POST /admin/coupons
func CreateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input couponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.PercentOff == nil && input.FlatOff == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon needs a percent or flat discount"})
			return
		}

		coupon := models.Coupon{
			Code:         pricing.NormalizeCouponCode(input.Code),
			PercentOff:   input.PercentOff,
			FlatOff:      input.FlatOff,
			MinimumSpend: input.MinimumSpend,
			ExpiresOn:    input.ExpiresOn,
			Active:       true,
		}
		if input.Active != nil {
			coupon.Active = *input.Active
		}
		if err := db.Create(&coupon).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Coupon code already exists"})
			return
		}
		c.JSON(http.StatusCreated, coupon)
	}
}

// PUT /admin/coupons/:id
func UpdateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupon models.Coupon
		if err := db.First(&coupon, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coupon"})
			return
		}

		var input couponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.PercentOff == nil && input.FlatOff == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon needs a percent or flat discount"})
			return
		}

		coupon.Code = pricing.NormalizeCouponCode(input.Code)
		coupon.PercentOff = input.PercentOff
		coupon.FlatOff = input.FlatOff
		coupon.MinimumSpend = input.MinimumSpend
		coupon.ExpiresOn = input.ExpiresOn
		if input.Active != nil {
			coupon.Active = *input.Active
		}
		if err := db.Save(&coupon).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
			return
		}
		c.JSON(http.StatusOK, coupon)
	}
}

// DELETE /admin/coupons/:id
// Coupons are deactivated, not deleted, so past orders keep their reference.
func DeactivateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Model(&models.Coupon{}).Where("id = ?", c.Param("id")).Update("active", false)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate coupon"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Coupon deactivated"})
	}
}
