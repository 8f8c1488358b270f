package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SufyanAli-7/Genix-AI/internal/api/rest/middleware"
	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/service"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
	"github.com/SufyanAli-7/Genix-AI/pkg/req"
)

// GenerationHandler exposes the five generation tools over HTTP
type GenerationHandler struct {
	service service.GenerationService
	log     *logger.Logger
	zlog    *zap.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(svc service.GenerationService, log *logger.Logger, zlog *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		service: svc,
		log:     log,
		zlog:    zlog,
	}
}

// ChatRequest is the body for the conversation and code tools
type ChatRequest struct {
	Prompt   string  `json:"prompt" validate:"required"`
	ThreadID *string `json:"thread_id,omitempty" validate:"omitempty,uuid"`
}

// ImageRequest is the body for the image tool
type ImageRequest struct {
	Prompt     string `json:"prompt" validate:"required"`
	Amount     int    `json:"amount,omitempty" validate:"omitempty,min=1,max=8"`
	Resolution string `json:"resolution,omitempty" validate:"omitempty,oneof=auto low medium high"`
}

// PromptRequest is the body for the music and video tools
type PromptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// Conversation handles POST /api/v1/conversation
func (h *GenerationHandler) Conversation(c *gin.Context) {
	h.chatTool(c, h.service.Conversation)
}

// Code handles POST /api/v1/code
func (h *GenerationHandler) Code(c *gin.Context) {
	h.chatTool(c, h.service.Code)
}

func (h *GenerationHandler) chatTool(c *gin.Context, run func(ctx context.Context, userID string, threadID *uuid.UUID, prompt string) (domain.Thread, error)) {
	body, err := req.HandleBody[ChatRequest](c.Writer, c.Request, h.zlog)
	if err != nil {
		return
	}

	var threadID *uuid.UUID
	if body.ThreadID != nil {
		id, err := uuid.Parse(*body.ThreadID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID format"})
			return
		}
		threadID = &id
	}

	thread, err := run(c.Request.Context(), middleware.UserID(c), threadID, body.Prompt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

// Image handles POST /api/v1/image
func (h *GenerationHandler) Image(c *gin.Context) {
	body, err := req.HandleBody[ImageRequest](c.Writer, c.Request, h.zlog)
	if err != nil {
		return
	}

	amount := body.Amount
	if amount == 0 {
		amount = 1
	}
	resolution := domain.ImageResolution(body.Resolution)
	if resolution == "" {
		resolution = domain.ImageResolutionAuto
	}

	images, err := h.service.Image(c.Request.Context(), middleware.UserID(c), body.Prompt, amount, resolution)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Generated %d image(s) for user %s", len(images), middleware.UserID(c))
	c.JSON(http.StatusOK, images)
}

// Music handles POST /api/v1/music
func (h *GenerationHandler) Music(c *gin.Context) {
	body, err := req.HandleBody[PromptRequest](c.Writer, c.Request, h.zlog)
	if err != nil {
		return
	}

	track, err := h.service.Music(c.Request.Context(), middleware.UserID(c), body.Prompt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, track)
}

// Video handles POST /api/v1/video
func (h *GenerationHandler) Video(c *gin.Context) {
	body, err := req.HandleBody[PromptRequest](c.Writer, c.Request, h.zlog)
	if err != nil {
		return
	}

	video, err := h.service.Video(c.Request.Context(), middleware.UserID(c), body.Prompt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, video)
}
