package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/bootstrap"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/logging"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/handler"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(logging.GinRecovery(app.Logger), logging.GinMiddleware(app.Logger))

	svc := app.Services
	logger := app.Logger

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(svc.Auth, logger)
	userHandler := handler.NewUserHandler(svc.Users, logger)
	channelHandler := handler.NewChannelHandler(svc.Channels, logger)
	messageHandler := handler.NewMessageHandler(svc.Messages, logger)
	assistantHandler := handler.NewAssistantHandler(svc.Assistant, logger)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)
	api.GET("/user/me", authJWT, userHandler.Me)

	authed := api.Group("")
	authed.Use(authJWT, middleware.ResolveUser(svc.Users))
	authed.GET("/users", userHandler.List)

	authed.GET("/channels", channelHandler.List)
	authed.POST("/channels", channelHandler.Create)
	authed.GET("/channels/:channelId", channelHandler.Get)

	authed.GET("/messages/me", messageHandler.ListMine)
	authed.GET("/messages/channel/:channelId", messageHandler.ListChannel)
	authed.POST("/messages/channel/:channelId", messageHandler.Send)

	authed.POST("/ai/chat", assistantHandler.Chat)
	authed.GET("/ai/usage", assistantHandler.Usage)
	authed.GET("/ai/history", assistantHandler.History)

	return router
}
