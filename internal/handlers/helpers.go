package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopbe/internal/apperr"
)

// respondError maps domain errors to HTTP. Infrastructure error shapes never
// reach the client; anything unrecognized becomes a bare 500.
func respondError(c *gin.Context, err error) {
	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": []gin.H{{"field": vErr.Field, "message": vErr.Message}},
		})
		return
	}

	var extErr *apperr.ExternalServiceError
	if errors.As(err, &extErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": extErr.Op})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": apperr.ErrEmailTaken.Error()})
	case errors.Is(err, apperr.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.ErrTokenRevoked.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}
