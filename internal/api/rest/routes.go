package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SufyanAli-7/Genix-AI/config"
	"github.com/SufyanAli-7/Genix-AI/internal/api/rest/handlers"
	"github.com/SufyanAli-7/Genix-AI/internal/api/rest/middleware"
	"github.com/SufyanAli-7/Genix-AI/internal/service"
	"github.com/SufyanAli-7/Genix-AI/internal/stripe"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// RouterDeps carries everything the route table needs
type RouterDeps struct {
	Config       *config.Config
	Registry     *prometheus.Registry
	Generation   service.GenerationService
	Library      service.LibraryService
	Entitlements service.EntitlementService
	Billing      service.BillingService
	Verifier     stripe.WebhookVerifier
	StripeClient stripe.Client
	Log          *logger.Logger
	ZapLog       *zap.Logger
}

// SetupRouter builds the Gin router with all routes and middleware
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggerMiddleware(deps.Log))
	r.Use(gin.Recovery())

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	generationHandler := handlers.NewGenerationHandler(deps.Generation, deps.Log, deps.ZapLog)
	libraryHandler := handlers.NewLibraryHandler(deps.Library, deps.Log)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.Entitlements, deps.Billing, deps.Log)
	webhookHandler := handlers.NewWebhookHandler(deps.Verifier, deps.StripeClient, deps.Billing, deps.Log)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Config.Auth.JWTSecret, deps.Log))
	{
		// Generation tools
		v1.POST("/conversation", generationHandler.Conversation)
		v1.POST("/code", generationHandler.Code)
		v1.POST("/image", generationHandler.Image)
		v1.POST("/music", generationHandler.Music)
		v1.POST("/video", generationHandler.Video)

		// Generation history
		conversations := v1.Group("/conversations")
		{
			conversations.GET("", libraryHandler.ListConversations)
			conversations.GET("/:id", libraryHandler.GetConversation)
			conversations.DELETE("/:id", libraryHandler.DeleteConversation)
		}

		codeGenerations := v1.Group("/code-generations")
		{
			codeGenerations.GET("", libraryHandler.ListCodeGenerations)
			codeGenerations.GET("/:id", libraryHandler.GetCodeGeneration)
			codeGenerations.DELETE("/:id", libraryHandler.DeleteCodeGeneration)
		}

		images := v1.Group("/images")
		{
			images.GET("", libraryHandler.ListImages)
			images.GET("/:id", libraryHandler.GetImage)
			images.DELETE("/:id", libraryHandler.DeleteImage)
		}

		videos := v1.Group("/videos")
		{
			videos.GET("", libraryHandler.ListVideos)
			videos.GET("/:id", libraryHandler.GetVideo)
			videos.DELETE("/:id", libraryHandler.DeleteVideo)
		}

		v1.GET("/music", libraryHandler.ListMusic)
		v1.GET("/music/:id", libraryHandler.GetMusic)
		v1.DELETE("/music/:id", libraryHandler.DeleteMusic)

		// Billing
		v1.GET("/subscription", subscriptionHandler.GetSubscription)
	}

	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookHandler.HandleStripeWebhook)
	}

	return r
}
