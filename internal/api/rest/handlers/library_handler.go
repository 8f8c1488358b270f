package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SufyanAli-7/Genix-AI/internal/api/rest/middleware"
	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/service"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// LibraryHandler exposes each user's generation history
type LibraryHandler struct {
	service service.LibraryService
	log     *logger.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(svc service.LibraryService, log *logger.Logger) *LibraryHandler {
	return &LibraryHandler{
		service: svc,
		log:     log,
	}
}

// ListConversations handles GET /api/v1/conversations
func (h *LibraryHandler) ListConversations(c *gin.Context) {
	h.listThreads(c, domain.ThreadKindConversation)
}

// GetConversation handles GET /api/v1/conversations/:id
func (h *LibraryHandler) GetConversation(c *gin.Context) {
	h.getThread(c, domain.ThreadKindConversation)
}

// DeleteConversation handles DELETE /api/v1/conversations/:id
func (h *LibraryHandler) DeleteConversation(c *gin.Context) {
	h.deleteThread(c, domain.ThreadKindConversation)
}

// ListCodeGenerations handles GET /api/v1/code-generations
func (h *LibraryHandler) ListCodeGenerations(c *gin.Context) {
	h.listThreads(c, domain.ThreadKindCode)
}

// GetCodeGeneration handles GET /api/v1/code-generations/:id
func (h *LibraryHandler) GetCodeGeneration(c *gin.Context) {
	h.getThread(c, domain.ThreadKindCode)
}

// DeleteCodeGeneration handles DELETE /api/v1/code-generations/:id
func (h *LibraryHandler) DeleteCodeGeneration(c *gin.Context) {
	h.deleteThread(c, domain.ThreadKindCode)
}

func (h *LibraryHandler) listThreads(c *gin.Context, kind domain.ThreadKind) {
	threads, err := h.service.ListThreads(c.Request.Context(), middleware.UserID(c), kind, queryLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (h *LibraryHandler) getThread(c *gin.Context, kind domain.ThreadKind) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	thread, err := h.service.GetThread(c.Request.Context(), middleware.UserID(c), id, kind)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *LibraryHandler) deleteThread(c *gin.Context, kind domain.ThreadKind) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteThread(c.Request.Context(), middleware.UserID(c), id, kind); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListImages handles GET /api/v1/images
func (h *LibraryHandler) ListImages(c *gin.Context) {
	images, err := h.service.ListImages(c.Request.Context(), middleware.UserID(c), queryLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// GetImage handles GET /api/v1/images/:id
func (h *LibraryHandler) GetImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	image, err := h.service.GetImage(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, image)
}

// DeleteImage handles DELETE /api/v1/images/:id
func (h *LibraryHandler) DeleteImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteImage(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListVideos handles GET /api/v1/videos
func (h *LibraryHandler) ListVideos(c *gin.Context) {
	videos, err := h.service.ListVideos(c.Request.Context(), middleware.UserID(c), queryLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// GetVideo handles GET /api/v1/videos/:id
func (h *LibraryHandler) GetVideo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	video, err := h.service.GetVideo(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// DeleteVideo handles DELETE /api/v1/videos/:id
func (h *LibraryHandler) DeleteVideo(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteVideo(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMusic handles GET /api/v1/music
func (h *LibraryHandler) ListMusic(c *gin.Context) {
	tracks, err := h.service.ListTracks(c.Request.Context(), middleware.UserID(c), queryLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tracks)
}

// GetMusic handles GET /api/v1/music/:id
func (h *LibraryHandler) GetMusic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	track, err := h.service.GetTrack(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, track)
}

// DeleteMusic handles DELETE /api/v1/music/:id
func (h *LibraryHandler) DeleteMusic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTrack(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, answering 400 itself on bad input
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return uuid.UUID{}, false
	}
	return id, true
}

// queryLimit parses the optional ?limit= query parameter
func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
