package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	service     *Service
	verifyToken string
}

func NewHandler(service *Service, verifyToken string) *Handler {
	return &Handler{service: service, verifyToken: verifyToken}
}

// Verify answers the subscription handshake.
// GET /api/v1/webhook/whatsapp
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken || challenge == "" {
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive ingests a signed webhook delivery.
// POST /api/v1/webhook/whatsapp
func (h *Handler) Receive(c *gin.Context) {
	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.service.ProcessPayload(c.Request.Context(), payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
