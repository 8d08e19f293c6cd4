package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/service"
	"github.com/siamt-api/internal/validation"
)

const internalErrorMessage = "An error occurred while processing the request."

// variantMessages holds the per-variant wording of client errors
type variantMessages struct {
	missingFile string
	notFound    string
	created     string
	deleted     string
}

var (
	newsMessages = variantMessages{
		missingFile: "Image is required",
		notFound:    "News not found",
		created:     "News created successfully",
		deleted:     "News deleted successfully",
	}
	conventionMessages = variantMessages{
		missingFile: "PDF file is required",
		notFound:    "Convention not found",
		created:     "Convention created successfully",
		deleted:     "Convention deleted successfully",
	}
)

// respondError maps service and parsing errors to HTTP responses.
// Anything unrecognized is a 500 carrying the error text.
func respondError(c *gin.Context, log zerolog.Logger, msgs variantMessages, err error) {
	var verrs validation.Errors

	switch {
	case errors.Is(err, service.ErrValidation):
		fields := []string{}
		if errors.As(err, &verrs) {
			fields = verrs.Fields()
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields", "fields": fields})
	case errors.Is(err, service.ErrMissingFile):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgs.missingFile})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
	case errors.Is(err, service.ErrInvalidFileName):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid file name"})
	case errors.Is(err, errInvalidMultipart):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid multipart request"})
	case errors.Is(err, errFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
	case errors.Is(err, errFieldTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Field too large"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgs.notFound})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": internalErrorMessage,
			"error":   err.Error(),
		})
	}
}
