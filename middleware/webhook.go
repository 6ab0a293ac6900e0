package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// PaymentWebhookAuth verifies the payment provider's webhook signature,
// skips the check in sandbox/dev mode.
func PaymentWebhookAuth() gin.HandlerFunc {
	secret := os.Getenv("MP_WEBHOOK_SECRET")
	if secret == "" {
		panic("MP_WEBHOOK_SECRET is not set")
	}

	mode := strings.ToLower(os.Getenv("MP_MODE"))

	return func(c *gin.Context) {
		if mode == "sandbox" || mode == "dev" {
			c.Next()
			return
		}

		signature := parseSignatureHeader(c.GetHeader("X-Signature"))
		if signature == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing webhook signature"})
			c.Abort()
			return
		}

		dataID := c.Query("data.id")
		requestID := c.GetHeader("X-Request-Id")

		// Signature template per the provider docs:
		// id:<data.id>;request-id:<x-request-id>;ts:<ts>;
		ts := parseSignaturePart(c.GetHeader("X-Signature"), "ts")
		manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(manifest))
		calculated := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(calculated)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// parseSignatureHeader extracts v1 from "ts=...,v1=...".
func parseSignatureHeader(header string) string {
	return parseSignaturePart(header, "v1")
}

func parseSignaturePart(header, key string) string {
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] == key {
			return kv[1]
		}
	}
	return ""
}
