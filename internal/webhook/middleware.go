package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Hub-Signature-256"

// SignatureMiddleware verifies the HMAC-SHA256 delivery signature against the
// raw request body. Unsigned or mis-signed deliveries are rejected before any
// parsing happens. The body is restored for downstream handlers.
func SignatureMiddleware(appSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !VerifySignature(body, c.GetHeader(signatureHeader), appSecret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}

// VerifySignature checks an "sha256=<hex>" header value against the HMAC of
// the body. Comparison is constant-time.
func VerifySignature(body []byte, header, appSecret string) bool {
	provided, ok := strings.CutPrefix(header, "sha256=")
	if !ok || provided == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
