package bootstrap

import (
	"log"

	"ai-writepad-be/internal/config"
	"ai-writepad-be/internal/controller"
	"ai-writepad-be/internal/pkg/logger"
	"ai-writepad-be/internal/repository/memory"
	"ai-writepad-be/internal/repository/unitofwork"
	"ai-writepad-be/internal/service"
	"ai-writepad-be/pkg/embedding"
	"ai-writepad-be/pkg/provider/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController   controller.IDocumentController
	GenerationController controller.IGenerationController
	SettingsController   controller.ISettingsController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. In-Memory Runtime State
	sessionRegistry := memory.NewSessionRegistry()
	embeddingCache := memory.NewEmbeddingCache()

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.Provider
	if cfg.Embedding.Provider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.APIKey)
		log.Printf("[INFO] Using Embedding Provider: OPENAI-COMPATIBLE (%s)", cfg.Embedding.Model)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Embedding.BaseURL, cfg.Embedding.Model)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Embedding.Model)
	}

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Topics.EmbedDocument)
	consumerService := service.NewConsumerService(pubSub, cfg.Topics.EmbedDocument, uowFactory, embeddingProvider, embeddingCache, sysLogger)

	settingsService := service.NewSettingsService(uowFactory, cfg)
	documentService := service.NewDocumentService(uowFactory, settingsService, publisherService, embeddingProvider, embeddingCache, sysLogger)
	generationService := service.NewGenerationService(uowFactory, sessionRegistry, settingsService, documentService, factory.NewCompletionProvider, sysLogger)

	// 5. Controllers
	documentController := controller.NewDocumentController(documentService)
	generationController := controller.NewGenerationController(generationService)
	settingsController := controller.NewSettingsController(settingsService)

	return &Container{
		DocumentController:   documentController,
		GenerationController: generationController,
		SettingsController:   settingsController,
		ConsumerService:      consumerService,
		Logger:               sysLogger,
	}
}
