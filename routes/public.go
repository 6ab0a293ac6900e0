package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/auth"
	addressControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/address"
	orderControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/order"
	productControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/product"
)

// SetupPublicRoutes registers everything a visitor can reach before holding a
// session: the catalog, postal-code lookup, and guest session creation.
func SetupPublicRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	r.POST("/auth/guest", auth.CreateGuestSession(db))

	r.GET("/products", productControllers.GetCatalog(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))

	r.GET("/address/:cep", addressControllers.ResolveHandler(deps.Address))

	// Kitchen displays subscribe here for live order updates.
	r.GET("/orders/ws", orderControllers.OrderWebSocketHandler)
}
