package adminControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type ledgerEntryInput struct {
	Kind          models.LedgerKind     `json:"kind" binding:"required,oneof=credit debit"`
	Amount        float64               `json:"amount" binding:"required,gt=0"`
	Description   string                `json:"description" binding:"required"`
	PaymentMethod *models.PaymentMethod `json:"payment_method,omitempty"`
}

// GET /admin/ledger
// The cash register view: latest 50 entries plus running totals.
func GetLedger(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entries []models.LedgerEntry
		if err := db.Order("created_at DESC").Limit(50).Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ledger"})
			return
		}

		credits, debits := decimal.Zero, decimal.Zero
		for _, e := range entries {
			amount := decimal.NewFromFloat(e.Amount)
			if e.Kind == models.LedgerCredit {
				credits = credits.Add(amount)
			} else {
				debits = debits.Add(amount)
			}
		}
		creditsF, _ := credits.Round(2).Float64()
		debitsF, _ := debits.Round(2).Float64()
		balanceF, _ := credits.Sub(debits).Round(2).Float64()

		c.JSON(http.StatusOK, gin.H{
			"entries": entries,
			"credits": creditsF,
			"debits":  debitsF,
			"balance": balanceF,
		})
	}
}

// POST /admin/ledger
// Manual entry for money movements outside orders (supplies, refunds paid in
// cash, ...). Order credits are written by checkout, never through here.
func CreateLedgerEntry(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ledgerEntryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry := models.LedgerEntry{
			Kind:          input.Kind,
			Amount:        input.Amount,
			Description:   input.Description,
			PaymentMethod: input.PaymentMethod,
		}
		if err := db.Create(&entry).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record entry"})
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}
