package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

// StripeWebhook applies checkout events. The raw body is kept intact for the
// signature check.
func (s *Server) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.billingSvc.HandleWebhook(c.Request.Context(), payload, c.Request.Header); err != nil {
		if !isValidationError(err) {
			s.logWarn(c, "stripe webhook failed", err)
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
