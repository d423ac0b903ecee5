package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "orgmessages/docs"
)

// NewRouter wires the message routes, health, API docs and, when hub is not
// nil, the WebSocket event stream.
func NewRouter(handler *Handler, hub http.Handler, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))

	r.GET("/healthz", handler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if hub != nil {
		r.GET("/ws", gin.WrapH(hub))
	}

	v1 := r.Group("/api/v1")
	{
		messages := v1.Group("/organizations/:organizationId/messages")
		messages.GET("", handler.ListMessages)
		messages.POST("", handler.CreateMessage)
		messages.GET("/:id", handler.GetMessage)
		messages.PUT("/:id", handler.UpdateMessage)
		messages.DELETE("/:id", handler.DeleteMessage)
	}
	return r
}
