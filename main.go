package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fossabot/chatJS-main/internal/config"
	"github.com/fossabot/chatJS-main/internal/db"
	"github.com/fossabot/chatJS-main/internal/fanout"
	"github.com/fossabot/chatJS-main/internal/handlers"
	"github.com/fossabot/chatJS-main/internal/messaging"
	"github.com/fossabot/chatJS-main/internal/middleware"
	"github.com/fossabot/chatJS-main/internal/objectstore"
	"github.com/fossabot/chatJS-main/internal/observability"
	"github.com/fossabot/chatJS-main/internal/rabbitmq"
	"github.com/fossabot/chatJS-main/internal/repositories"
	"github.com/fossabot/chatJS-main/internal/session"
	"github.com/fossabot/chatJS-main/internal/telemetry"
	"github.com/fossabot/chatJS-main/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	eventsPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Printf("events publisher disabled: %v", err)
	} else {
		observability.SetPublisher(eventsPublisher)
		defer eventsPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRouting, cfg.ServiceName, cfg.Environment)

	objectStore, err := objectstore.NewDiskStore(cfg.ObjectRoot)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}

	keyRepo := repositories.NewChannelKeyRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	sessionRepo := repositories.NewSessionRepo(database)

	hub := ws.NewHub()
	engine := fanout.NewEngine(sessionRepo, hub)
	svc := messaging.NewService(keyRepo, messageRepo, engine, objectStore, auditEmitter)
	dispatcher := messaging.NewDispatcher(svc)

	resolver := session.NewResolver(sessionRepo)
	gateway := ws.NewGateway(hub, resolver, dispatcher, svc)
	historyHandler := handlers.NewHistoryHandler(keyRepo, messageRepo)
	systemHandler := handlers.NewSystemHandler(svc)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())

	sessionAuth := middleware.SessionAuth(resolver)

	router.GET("/messages/:target", sessionAuth, historyHandler.GetMessages)
	router.POST("/internal/messages", systemHandler.PostMessage)
	router.GET("/ws", gateway.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
