package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	addressControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/address"
	cartControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/cart"
	checkoutControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/checkout"
	deliveryControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/delivery"
	orderControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/order"
	paymentControllers "github.com/Killzin1000/tarsi-sweet-hub/controllers/payment"
	"github.com/Killzin1000/tarsi-sweet-hub/models"
	"github.com/Killzin1000/tarsi-sweet-hub/routes"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Customer{},
		&models.GuestSession{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
		&models.LedgerEntry{},
		&models.Coupon{},
		&models.Ingredient{},
		&models.Recipe{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	seedProducts(db)

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	origin := deliveryControllers.StoreOrigin{
		Name:    os.Getenv("STORE_NAME"),
		Phone:   os.Getenv("STORE_PHONE"),
		Address: os.Getenv("STORE_ADDRESS"),
	}

	cartStore := cartControllers.NewStore(cartControllers.NewRepository(db))
	deliveryClient := deliveryControllers.NewClient(origin)
	paymentClient := paymentControllers.NewClient()

	assembler := &checkoutControllers.Assembler{
		Cart:        cartStore,
		Orders:      checkoutControllers.NewOrderRepository(db),
		Payments:    paymentClient,
		Courier:     deliveryClient,
		Broadcast:   orderControllers.BroadcastOrder,
		QuoteSecret: deliveryControllers.SigningSecret(),
	}

	// Setup routes
	routes.SetupRoutes(r, db, routes.Deps{
		Cart:     cartStore,
		Checkout: assembler,
		Delivery: deliveryClient,
		Address:  addressControllers.NewResolver(),
	})

	// Purge expired guest sessions daily at 3 AM
	go startDailySessionPurge(db, 3, 0)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}

// seedProducts loads the starting catalog on an empty database.
func seedProducts(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		log.Printf("❌ Failed to count products: %v", err)
		return
	}
	if count > 0 {
		return
	}

	seed := []models.Product{
		{Name: "Trufas Artesanais", Description: "Caixa com 6 trufas sortidas", Category: "doces", Price: 45.00, Active: true},
		{Name: "Brownie Recheado", Description: "Brownie com recheio de doce de leite", Category: "doces", Price: 35.00, Active: true},
		{Name: "Bolo de Aniversário", Description: "Bolo decorado sob encomenda", Category: "bolos", Price: 120.00, Active: true},
		{Name: "Brigadeiros Gourmet", Description: "Caixa com 12 brigadeiros", Category: "doces", Price: 40.00, Active: true},
		{Name: "Kit Festa", Description: "Bolo + 25 docinhos", Category: "kits", Price: 85.00, Active: true},
	}
	if err := db.Create(&seed).Error; err != nil {
		log.Printf("❌ Failed to seed products: %v", err)
		return
	}
	log.Printf("✅ Seeded %d products", len(seed))
}

// startDailySessionPurge removes expired guest sessions at a fixed hour so
// abandoned carts do not pile up.
func startDailySessionPurge(db *gorm.DB, hour, min int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		log.Printf("⏳ Next session purge scheduled at: %s", next.Format("2006-01-02 15:04:05"))
		time.Sleep(next.Sub(now))

		var expired []models.GuestSession
		if err := db.Where("expires_at < ?", time.Now()).Find(&expired).Error; err != nil {
			log.Printf("❌ Failed to list expired sessions: %v", err)
			continue
		}
		for _, session := range expired {
			var cart models.Cart
			if err := db.First(&cart, "owner_id = ?", session.ID).Error; err == nil {
				db.Where("cart_id = ?", cart.CartID).Delete(&models.CartLine{})
				db.Delete(&cart)
			}
			db.Delete(&session)
		}
		if len(expired) > 0 {
			log.Printf("🗑️ Purged %d expired guest sessions", len(expired))
		}
	}
}
