package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"alive-chat/internal/assets"
	"alive-chat/internal/auth"
	"alive-chat/internal/config"
	"alive-chat/internal/db"
	"alive-chat/internal/handlers"
	"alive-chat/internal/middleware"
	"alive-chat/internal/observability"
	"alive-chat/internal/rabbitmq"
	"alive-chat/internal/repositories"
	"alive-chat/internal/telemetry"
	"alive-chat/internal/ws"
)

const serviceName = "alive-chat"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, cfg.OTLPAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	wsEventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Warn().Err(err).Msg("ws event publishing disabled")
	} else {
		observability.SetPublisher(wsEventPublisher)
		defer wsEventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Info().Str("mode", rabbitmq.PublisherMode(auditPublisher)).Msg("audit publisher ready")
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit.alive_chat", serviceName, cfg.Environment)

	authClient := auth.NewClient(cfg.AuthBaseURL)

	messageRepo := repositories.NewMessageRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)
	effectRepo := repositories.NewEffectRepo(database)

	hub := ws.NewHub()

	chatHandler := handlers.NewChatHandler(messageRepo, reactionRepo, effectRepo, hub, auditEmitter)
	roomWS := ws.NewRoomWebSocketHandler(hub, authClient)
	feedWS := ws.NewFeedWebSocketHandler(hub, authClient)

	shell := assets.NewCache(cfg.AssetDir, cfg.OfflinePage, nil)
	shell.Prime()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(authClient)

	router.GET("/conversations", authMiddleware, chatHandler.ListConversations)
	router.GET("/rooms/:room_id/messages", authMiddleware, chatHandler.GetRoomMessages)
	router.POST("/rooms/:room_id/messages", authMiddleware, chatHandler.PostRoomMessage)
	router.GET("/rooms/:room_id/reactions", authMiddleware, chatHandler.GetRoomReactions)
	router.POST("/rooms/:room_id/messages/:message_id/reactions", authMiddleware, chatHandler.PostReaction)

	router.GET("/ws/feed", feedWS.Handle)
	router.GET("/ws/rooms/:room_id", roomWS.Handle)

	router.POST("/assets/refresh", shell.RefreshHandler())
	router.NoRoute(shell.Handler())

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("alive-chat listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
}
