package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	adminControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/admin"
	deliveryControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/delivery"
	orderControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/order"
	productControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/product"
	"github.com/Killzin1000/tarsi-sweet-hub/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-key middleware.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("", productControllers.GetAllProducts(db))
			productAdmin.POST("", productControllers.CreateProduct(db))
			productAdmin.PUT("/:id", productControllers.UpdateProduct(db))
			productAdmin.DELETE("/:id", productControllers.DeactivateProduct(db))
		}

		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(db))
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
		}

		ledgerAdmin := adminGroup.Group("/ledger")
		{
			ledgerAdmin.GET("", adminControllers.GetLedger(db))
			ledgerAdmin.POST("", adminControllers.CreateLedgerEntry(db))
		}

		couponAdmin := adminGroup.Group("/coupons")
		{
			couponAdmin.GET("", adminControllers.GetCoupons(db))
			couponAdmin.POST("", adminControllers.CreateCoupon(db))
			couponAdmin.PUT("/:id", adminControllers.UpdateCoupon(db))
			couponAdmin.DELETE("/:id", adminControllers.DeactivateCoupon(db))
		}

		stockAdmin := adminGroup.Group("/ingredients")
		{
			stockAdmin.GET("", adminControllers.GetIngredients(db))
			stockAdmin.POST("", adminControllers.CreateIngredient(db))
			stockAdmin.PATCH("/:id", adminControllers.UpdateIngredientQuantity(db))
			stockAdmin.DELETE("/:id", adminControllers.DeleteIngredient(db))
		}

		recipeAdmin := adminGroup.Group("/recipes")
		{
			recipeAdmin.GET("", adminControllers.GetRecipes(db))
			recipeAdmin.POST("", adminControllers.CreateRecipe(db))
			recipeAdmin.DELETE("/:id", adminControllers.DeleteRecipe(db))
		}

		deliveryAdmin := adminGroup.Group("/deliveries")
		{
			deliveryAdmin.GET("/:deliveryID", deliveryControllers.StatusHandler(deps.Delivery))
			deliveryAdmin.POST("/:deliveryID/cancel", deliveryControllers.CancelHandler(deps.Delivery))
		}
	}
}
