package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	userIDKey           = "userID"

	errMissingAuthHeader = "missing Authorization header"
	errBadAuthHeader     = "invalid Authorization header format"
	errBadToken          = "invalid or expired token"
)

// userIDMiddleware guards panel endpoints when auth.required is on. It
// expects "Bearer <token>" and stores the token's user id in the request
// context for handlers that need attribution.
func (h *Handler) userIDMiddleware(c *gin.Context) {
	header := c.GetHeader(authorizationHeader)
	token, ok := bearerToken(header)
	if !ok {
		msg := errBadAuthHeader
		if header == "" {
			msg = errMissingAuthHeader
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errBadToken})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// bearerToken extracts the token from a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
