package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/service"
)

// NewsHandler handles news endpoints
type NewsHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *NewsHandler {
	return &NewsHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "news").Logger(),
	}
}

// Create handles POST /news
// Multipart fields: title, description, author, plus one image file part
func (h *NewsHandler) Create(c *gin.Context) {
	upload, err := readUpload(c, h.cfg.Storage.MaxUploadSize)
	if err != nil {
		respondError(c, h.log, newsMessages, err)
		return
	}

	form := models.NewsForm{
		Title:       upload.value("title"),
		Description: upload.value("description"),
		Author:      upload.value("author"),
	}

	news, err := h.services.News.Create(c.Request.Context(), form, upload.file)
	if err != nil {
		respondError(c, h.log, newsMessages, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": newsMessages.created,
		"data":    news,
	})
}

// List handles GET /news
func (h *NewsHandler) List(c *gin.Context) {
	all, err := h.services.News.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, newsMessages, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allNews": all})
}

// Get handles GET /news/:id
func (h *NewsHandler) Get(c *gin.Context) {
	news, err := h.services.News.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, newsMessages, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"news": news})
}

// Delete handles DELETE /news/:id
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.services.News.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, newsMessages, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": newsMessages.deleted})
}
