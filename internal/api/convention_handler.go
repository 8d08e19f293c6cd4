package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/service"
)

// ConventionHandler handles convention endpoints
type ConventionHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewConventionHandler creates a new ConventionHandler
func NewConventionHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ConventionHandler {
	return &ConventionHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "convention").Logger(),
	}
}

// Create handles POST /conventions
// Multipart fields: title (or name), year, plus one document file part
func (h *ConventionHandler) Create(c *gin.Context) {
	upload, err := readUpload(c, h.cfg.Storage.MaxUploadSize)
	if err != nil {
		respondError(c, h.log, conventionMessages, err)
		return
	}

	form := models.ConventionForm{
		Title: upload.value("title", "name"),
		Year:  upload.value("year"),
	}

	convention, err := h.services.Convention.Create(c.Request.Context(), form, upload.file)
	if err != nil {
		respondError(c, h.log, conventionMessages, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": conventionMessages.created,
		"data":    convention,
	})
}

// List handles GET /conventions
func (h *ConventionHandler) List(c *gin.Context) {
	all, err := h.services.Convention.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, conventionMessages, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conventions": all})
}

// Download handles GET /conventions/download/:fileName
// Streams the stored document as an attachment under its original name
func (h *ConventionHandler) Download(c *gin.Context) {
	dl, err := h.services.Convention.Download(c.Request.Context(), c.Param("fileName"))
	if err != nil {
		respondError(c, h.log, variantMessages{notFound: "File not found"}, err)
		return
	}
	defer dl.Close()

	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, dl.FileName),
		"Cache-Control":       "no-cache",
		"Last-Modified":       dl.ModTime.UTC().Format(http.TimeFormat),
	})
}

// Delete handles DELETE /conventions/:id
func (h *ConventionHandler) Delete(c *gin.Context) {
	if err := h.services.Convention.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, conventionMessages, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": conventionMessages.deleted})
}
