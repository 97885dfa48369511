package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messego/internal/config"
	"messego/internal/db"
	"messego/internal/handlers"
	"messego/internal/media"
	"messego/internal/middleware"
	"messego/internal/observability"
	"messego/internal/rabbitmq"
	"messego/internal/repositories"
	"messego/internal/telemetry"
	"messego/internal/token"
)

const serviceName = "messego"

// requestTimeout bounds every store and collaborator call made with the
// request context; a stalled backend surfaces as a 500 instead of holding
// the handler for as long as the client waits.
const requestTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Printf("WARNING: JWT_SECRET is not set; login and authenticated routes will fail with a configuration error")
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	emitter := telemetry.NewEmitter(publisher, serviceName, cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	tokenService := token.NewService(cfg.JWTSecret)
	uploader := media.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if !uploader.Configured() {
		log.Printf("WARNING: cloudinary is not configured; image messages will fail to upload")
	}

	authHandler := handlers.NewAuthHandler(userRepo, tokenService, emitter, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userRepo)
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, uploader, emitter)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.RequestTimeout(requestTimeout))

	authRequired := middleware.Auth(tokenService)

	router.POST("/auth/signup", authHandler.Signup)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/logout", authHandler.Logout)
	router.GET("/auth/me", authRequired, authHandler.Me)

	router.GET("/users", authRequired, userHandler.List)
	router.POST("/users", authRequired, userHandler.Detail)

	router.POST("/messages/send", authRequired, messageHandler.Send)
	router.GET("/messages/user/:userId", authRequired, messageHandler.Conversation)
	router.DELETE("/messages/user/:userId", authRequired, messageHandler.DeleteConversationSide)
	router.DELETE("/messages/delete", authRequired, messageHandler.DeleteOne)
	router.POST("/messages/delete", authRequired, messageHandler.DeleteMany)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
