package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/videoinsight/internal/api/handlers"
)

type Deps struct {
	Video *handlers.VideoHandler
	AI    *handlers.AIHandler
	WS    *handlers.WSHandler

	UploadsDir string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	api.POST("/video/upload", d.Video.Upload)
	api.POST("/video/analyze", d.Video.Analyze)
	api.POST("/video/chat", d.Video.Chat)

	api.POST("/ai/analyze", d.AI.Analyze)
	api.POST("/ai/chat", d.AI.Chat)

	// Stored videos are served as-is; the browser player streams from here.
	r.Static("/uploads", d.UploadsDir)

	// WebSocket event channel (one shared room)
	r.GET("/ws", d.WS.Events)
}
