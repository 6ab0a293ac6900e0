package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	addressControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/address"
	cartControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/cart"
	checkoutControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/checkout"
	deliveryControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/delivery"
)

// Deps carries the long-lived pieces built in main: stores and provider
// clients. Handlers that only need the DB take it directly.
type Deps struct {
	Cart     *cartControllers.Store
	Checkout *checkoutControllers.Assembler
	Delivery *deliveryControllers.Client
	Address  *addressControllers.Resolver
}

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	// Public routes (no middleware)
	SetupPublicRoutes(r, db, deps)

	// Customer routes (JWT-protected)
	SetupCustomerRoutes(r, db, deps)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, db, deps)

	// Payment provider callbacks (signature-verified)
	SetupPaymentRoutes(r, db)
}
