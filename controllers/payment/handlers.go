package paymentControllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type webhookNotification struct {
	Action string `json:"action"` // e.g. "payment.updated"
	Data   struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// OrderReconciler moves an order out of awaiting_payment once its payment is
// confirmed.
type OrderReconciler interface {
	MarkPaid(ctx context.Context, paymentID string) (bool, error)
}

type gormReconciler struct {
	db *gorm.DB
}

func NewReconciler(db *gorm.DB) OrderReconciler {
	return &gormReconciler{db: db}
}

// MarkPaid only touches orders still awaiting payment, so a replayed
// notification is a no-op.
func (r *gormReconciler) MarkPaid(ctx context.Context, paymentID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_id = ? AND payment_standing = ?", paymentID, models.PaymentAwaiting).
		Update("payment_standing", models.PaymentConfirmed)
	return res.RowsAffected > 0, res.Error
}

// WebhookHandler reconciles asynchronous (Pix) payments: when the provider
// reports a payment approved, the matching order moves out of
// awaiting_payment. Signature verification happens in middleware.
func WebhookHandler(reconciler OrderReconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var n webhookNotification
		if err := c.ShouldBindJSON(&n); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification payload"})
			return
		}
		if n.Data.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing payment id"})
			return
		}

		if n.Data.Status != string(StatusApproved) {
			// Nothing to reconcile; acknowledge so the provider stops retrying.
			c.JSON(http.StatusOK, gin.H{"message": "ignored"})
			return
		}

		matched, err := reconciler.MarkPaid(c.Request.Context(), n.Data.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
			return
		}
		if !matched {
			log.Printf("payment webhook: no awaiting order for payment %s", n.Data.ID)
		}

		c.JSON(http.StatusOK, gin.H{"message": "payment reconciled"})
	}
}
