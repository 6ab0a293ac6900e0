package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

const guestSessionTTL = 24 * time.Hour

// POST /auth/guest
// The storefront has no login: every visitor gets a guest session and a JWT
// whose subject owns their cart and orders.
func CreateGuestSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := "guest_" + generateRandomString(16)

		session := models.GuestSession{
			ID:        guestID,
			ExpiresAt: time.Now().Add(guestSessionTTL),
		}
		if err := db.Create(&session).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest session"})
			return
		}

		// Customer row up front so orders can reference it later.
		customer := models.Customer{ID: guestID}
		if err := db.Create(&customer).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
			return
		}

		token, err := issueGuestToken(guestID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guest_id":   guestID,
			"token":      token,
			"expires_at": session.ExpiresAt,
		})
	}
}

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "rand_guest"
	}
	return hex.EncodeToString(bytes)
}

func issueGuestToken(id string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": id,
		"role":    "guest",
		"exp":     time.Now().Add(guestSessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
