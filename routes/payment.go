package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	paymentControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/payment"
	"github.com/Killzin1000/tarsi-sweet-hub/middleware"
)

// SetupPaymentRoutes registers the payment provider callback. The signature
// check runs before the handler ever sees the body.
func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB) {
	r.POST("/payments/webhook", middleware.PaymentWebhookAuth(), paymentControllers.WebhookHandler(paymentControllers.NewReconciler(db)))
}
