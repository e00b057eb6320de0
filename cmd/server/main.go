package main

import (
	"log"
	"log/slog"
	"net/http"

	"parlor/backend/internal/config"
	"parlor/backend/internal/core"
	"parlor/backend/internal/handler"
	"parlor/backend/internal/logging"
	"parlor/backend/internal/ws"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "parlor/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Parlor API
// @version         1.0
// @description     This is the HTTP surface of the Parlor avatar-room server.
// @host            localhost:10000
// @BasePath        /
func main() {
	logging.Setup(logging.Options{
		Level:  config.AppConfig.LogLevel,
		Format: config.AppConfig.LogFormat,
	})

	c := core.New(core.Options{
		JWTSecret:     config.AppConfig.JWTSecret,
		MasterOwner:   config.AppConfig.MasterOwner,
		RetainAvatars: config.AppConfig.RetainAvatars,
	})
	h := handler.New(c)
	gateway := ws.NewGateway(c)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Request/response surface
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/profile", h.Profile)
	router.POST("/fixOwner", h.FixOwner)

	// Event channel
	router.GET("/ws", gateway.Handle)

	slog.Info("server starting", "port", config.AppConfig.Port)
	log.Fatal(router.Run(":" + config.AppConfig.Port))
}
