package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"hostelx-service/internal/auth"
	"hostelx-service/internal/config"
	"hostelx-service/internal/db"
	"hostelx-service/internal/handlers"
	"hostelx-service/internal/mailer"
	"hostelx-service/internal/middleware"
	"hostelx-service/internal/observability"
	"hostelx-service/internal/otp"
	"hostelx-service/internal/rabbitmq"
	"hostelx-service/internal/repositories"
	"hostelx-service/internal/telemetry"
	"hostelx-service/internal/uploads"
	"hostelx-service/internal/ws"
)

const serviceName = "hostelx-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	if cfg.AMQPURL != "" {
		eventsPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("events publisher unavailable: %v", err)
		} else {
			observability.SetPublisher(eventsPublisher)
			defer eventsPublisher.Close()
		}
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRouting, serviceName, cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	postRepo := repositories.NewPostRepo(database)
	requestRepo := repositories.NewRequestRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	resolver := auth.NewIdentityResolver(userRepo)

	var otpStore otp.Store
	var memoryOTP *otp.MemoryStore
	if cfg.RedisAddr != "" {
		otpStore = otp.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		memoryOTP = otp.NewMemoryStore()
		otpStore = memoryOTP
	}

	otpMailer := mailer.NewMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail)

	uploadSvc, err := uploads.NewService(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("failed to prepare uploads: %v", err)
	}

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, resolver, tokens, otpStore, cfg.OTPTTL, otpMailer, auditEmitter)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, uploadSvc, hub, auditEmitter)
	requestHandler := handlers.NewRequestHandler(requestRepo, postRepo, hub, auditEmitter)
	conversationHandler := handlers.NewConversationHandler(conversationRepo, messageRepo, hub)
	socketHandler := ws.NewSocketHandler(hub, conversationRepo, tokens)

	scheduler := cron.New()
	if memoryOTP != nil {
		scheduler.AddFunc("@every 5m", func() {
			if removed := memoryOTP.Sweep(); removed > 0 {
				log.Printf("otp sweep removed %d expired codes", removed)
			}
		})
	}
	scheduler.AddFunc("@every 1m", func() {
		count, err := postRepo.CountActive(context.Background())
		if err != nil {
			log.Printf("active posts count: %v", err)
			return
		}
		observability.SetActivePosts(count)
	})
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static(cfg.UploadBaseURL, uploadSvc.Dir())

	router.POST("/auth/signup", authHandler.Signup)
	router.POST("/auth/login", authHandler.Login)

	authMiddleware := middleware.AuthMiddleware(tokens)
	authed := router.Group("/", authMiddleware)

	authed.POST("/auth/otp/send", authHandler.SendOTP)
	authed.POST("/auth/otp/verify", authHandler.VerifyOTP)
	authed.GET("/auth/me", authHandler.Me)
	authed.PUT("/auth/me", authHandler.UpdateMe)

	authed.POST("/posts", postHandler.CreatePost)
	authed.GET("/posts", postHandler.ListPosts)
	authed.GET("/posts/mine", postHandler.MyPosts)
	authed.GET("/posts/:post_id", postHandler.GetPost)
	authed.PUT("/posts/:post_id", postHandler.UpdatePost)
	authed.DELETE("/posts/:post_id", postHandler.DeletePost)
	authed.POST("/uploads/images", postHandler.UploadImage)

	authed.POST("/posts/:post_id/requests", requestHandler.SendRequest)
	authed.GET("/requests/incoming", requestHandler.IncomingRequests)
	authed.GET("/requests/outgoing", requestHandler.OutgoingRequests)
	authed.POST("/requests/:request_id/accept", requestHandler.AcceptRequest)
	authed.POST("/requests/:request_id/reject", requestHandler.RejectRequest)

	authed.GET("/conversations", conversationHandler.ListConversations)
	authed.GET("/conversations/:conversation_id", conversationHandler.GetConversation)
	authed.GET("/conversations/:conversation_id/messages", conversationHandler.GetMessages)
	authed.POST("/conversations/:conversation_id/messages", conversationHandler.PostMessage)
	authed.POST("/conversations/:conversation_id/read", conversationHandler.MarkRead)

	router.GET("/ws/feed", socketHandler.HandleFeed)
	router.GET("/ws/inbox", socketHandler.HandleInbox)
	router.GET("/ws/conversations/:conversation_id", socketHandler.HandleConversation)

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
