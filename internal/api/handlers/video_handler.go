package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/videoinsight/internal/models"
	"github.com/yoockh/videoinsight/internal/services"
	"github.com/yoockh/videoinsight/internal/utils"
)

// VideoHandler serves the inline-protocol surface: multipart upload plus
// analyze/chat calls that send the stored bytes inside the generation request.
type VideoHandler struct {
	svc            services.AnalysisService
	maxUploadBytes int64
}

func NewVideoHandler(svc services.AnalysisService, maxUploadBytes int64) *VideoHandler {
	return &VideoHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

type analyzeVideoRequest struct {
	Filename string `json:"filename"`
	Prompt   string `json:"prompt"`
}

type chatVideoRequest struct {
	Filename    string               `json:"filename"`
	VideoURI    string               `json:"videoUri"`
	Question    string               `json:"question"`
	ChatHistory []models.ChatMessage `json:"chatHistory"`
}

func (h *VideoHandler) Upload(c *gin.Context) {
	const op = "VideoHandler.Upload"

	fh, err := c.FormFile("video")
	if err != nil {
		writeError(c, utils.E(utils.CodeValidation, op, "no video file uploaded", err))
		return
	}
	if fh.Size <= 0 {
		writeError(c, utils.E(utils.CodeValidation, op, "uploaded video file is empty", nil))
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		writeError(c, utils.E(utils.CodeStorage, op,
			fmt.Sprintf("video exceeds the %d MB upload limit", h.maxUploadBytes/(1024*1024)), nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer f.Close()

	asset, err := h.svc.Upload(c.Request.Context(), f, fh.Size, fh.Header.Get("Content-Type"), fh.Filename)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file": gin.H{
			"filename": asset.LocalID,
			"path":     asset.StoragePath,
			"size":     asset.ByteSize,
			"mimetype": asset.MimeType,
		},
	})
}

func (h *VideoHandler) Analyze(c *gin.Context) {
	const op = "VideoHandler.Analyze"

	var req analyzeVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeValidation, op, "invalid request body", err))
		return
	}
	if req.Filename == "" {
		writeError(c, utils.E(utils.CodeValidation, op, "filename is required", nil))
		return
	}

	res, err := h.svc.AnalyzeInline(c.Request.Context(), req.Filename, req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"analysis": gin.H{
			"text":      res.Text,
			"timestamp": res.ProducedAt,
		},
	})
}

func (h *VideoHandler) Chat(c *gin.Context) {
	const op = "VideoHandler.Chat"

	var req chatVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeValidation, op, "invalid request body", err))
		return
	}

	ref := services.MediaRef{LocalID: req.Filename, URI: req.VideoURI}
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
		},
	})
}
