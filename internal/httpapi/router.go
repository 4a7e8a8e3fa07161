package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abramau/gavrila/internal/common"
	"github.com/abramau/gavrila/internal/httpapi/handlers"
	"github.com/abramau/gavrila/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	r.GET("/ping", h.Ping)

	ops := r.Group("/ops")
	ops.Use(middleware.AuthRequired(jwtSecret))
	ops.POST("/digest", h.TriggerDigest)
	ops.POST("/purge", h.RunPurge)
	ops.GET("/chats/:chat_id/history", h.ChatHistory)

	return r
}
