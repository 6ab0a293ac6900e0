package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/auth"
	cartControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/cart"
	checkoutControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/checkout"
	deliveryControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/delivery"
	orderControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/order"
	"github.com/Killzin1000/tarsi-sweet-hub/middleware"
)

// SetupCustomerRoutes registers the JWT-protected storefront endpoints.
func SetupCustomerRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	customer := r.Group("/")
	customer.Use(middleware.ValidateToken)
	{
		customer.GET("/me", auth.GetProfile(db))
		customer.PUT("/me", auth.UpdateProfile(db))

		cart := customer.Group("/cart")
		{
			cart.GET("", cartControllers.GetCart(deps.Cart))
			cart.POST("", cartControllers.AddLine(db, deps.Cart))
			cart.PATCH("/:lineID", cartControllers.UpdateLineQuantity(deps.Cart))
			cart.DELETE("/:lineID", cartControllers.RemoveLine(deps.Cart))
			cart.DELETE("", cartControllers.ClearCart(deps.Cart))
		}

		customer.POST("/delivery/quote", deliveryControllers.QuoteHandler(deps.Delivery))

		customer.POST("/checkout", checkoutControllers.SubmitHandler(deps.Checkout))

		customer.GET("/my-orders", orderControllers.GetMyOrdersHandler(db))
		customer.GET("/my-orders/:orderID", orderControllers.GetOrderByIDHandler(db))
	}
}
