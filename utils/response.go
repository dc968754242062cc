package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"gymdesk-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RespondWithServiceError maps a service error onto its HTTP status.
func RespondWithServiceError(c *gin.Context, err error) {
	var rule *models.RuleError
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &rule):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": rule.Message, "reason": rule.Reason})
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
	case errors.Is(err, models.ErrNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		RespondWithError(c, http.StatusNotFound, "record not found")
	case errors.Is(err, models.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		RespondWithError(c, http.StatusConflict, "resource was modified concurrently, please retry")
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}

// RespondWithBindError reports a malformed or invalid request body.
func RespondWithBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		RespondWithServiceError(c, err)
		return
	}
	RespondWithError(c, http.StatusBadRequest, err.Error())
}
