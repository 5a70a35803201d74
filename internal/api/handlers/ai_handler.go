package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/videoinsight/internal/models"
	"github.com/yoockh/videoinsight/internal/services"
	"github.com/yoockh/videoinsight/internal/utils"
)

// AIHandler serves the remote-upload protocol surface: analysis that pushes
// the video through the provider's file API and chat that references the
// resulting URI.
type AIHandler struct {
	svc services.AnalysisService
}

func NewAIHandler(svc services.AnalysisService) *AIHandler {
	return &AIHandler{svc: svc}
}

type analyzeAIRequest struct {
	VideoPath string `json:"videoPath"`
}

type chatAIRequest struct {
	Question    string               `json:"question"`
	VideoURI    string               `json:"videoUri"`
	ChatHistory []models.ChatMessage `json:"chatHistory"`
}

func (h *AIHandler) Analyze(c *gin.Context) {
	const op = "AIHandler.Analyze"

	var req analyzeAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeValidation, op, "invalid request body", err))
		return
	}
	if strings.TrimSpace(req.VideoPath) == "" {
		writeError(c, utils.E(utils.CodeValidation, op, "videoPath is required", nil))
		return
	}

	// Clients send back the serving path ("/uploads/<name>"); only the
	// generated name addresses the store.
	localID := filepath.Base(strings.TrimSpace(req.VideoPath))

	res, err := h.svc.AnalyzeRemote(c.Request.Context(), localID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"analysis": gin.H{
			"text":      res.Text,
			"videoUri":  res.SourceURI,
			"timestamp": res.ProducedAt,
			"type":      res.Kind,
		},
	})
}

func (h *AIHandler) Chat(c *gin.Context) {
	const op = "AIHandler.Chat"

	var req chatAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeValidation, op, "invalid request body", err))
		return
	}

	ref := services.MediaRef{URI: strings.TrimSpace(req.VideoURI)}
	res, err := h.svc.Chat(c.Request.Context(), ref, req.Question, req.ChatHistory)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"response": gin.H{
			"text":      res.Text,
			"timestamp": res.ProducedAt,
			"type":      res.Kind,
		},
	})
}
