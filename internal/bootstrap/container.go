package bootstrap

import (
	"io"
	"log"
	"os"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/implementation"
	"ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/pkg/agent"
	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/llm/factory"
	pktNats "ai-assistant-be/pkg/nats"
	"ai-assistant-be/pkg/tools"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	SysLogger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Model traffic (prompts, generated SQL, tool payloads) goes to its own
	// rotated file in addition to the console.
	llmRotator := &lumberjack.Logger{
		Filename:   cfg.App.LLMLogFilePath,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	llmLogger := log.New(io.MultiWriter(os.Stdout, llmRotator), "", log.LstdFlags)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional: without it the service runs, just without audit events.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
		natsPub = nil
	}

	// Redis caches text-to-SQL translations. Also optional.
	var redisClient *redis.Client
	if opts, err := redis.ParseURL(cfg.App.RedisURL); err == nil {
		redisClient = redis.NewClient(opts)
	} else {
		log.Printf("[WARN] Invalid REDIS_URL, SQL cache disabled: %v", err)
	}

	// 3. AI providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.MainModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	var embeddingProvider embedding.Provider
	switch cfg.Ai.LLMProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	default:
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
	}

	// 4. Agent core
	searchTool := tools.NewDocumentSearch(
		embeddingProvider,
		implementation.NewDocumentChunkRepository(db),
		cfg.Ai.SearchTopK,
		cfg.Ai.SearchMinScore,
		llmLogger,
	)
	dbTool := tools.NewDatabaseQuery(llmProvider, db, cfg.Ai.TextToSQLModel, redisClient, llmLogger)
	agentCore := agent.New(llmProvider, searchTool, dbTool, llmLogger)

	// 5. Services
	conversations := memory.NewConversationRepository()
	publisherService := service.NewPublisherService(cfg.App.EmbedChunkTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EmbedChunkTopic, uowFactory, embeddingProvider)

	assistantService := service.NewAssistantService(agentCore, conversations, uowFactory, natsPub, sysLogger)
	documentService := service.NewDocumentService(uowFactory, publisherService, natsPub, sysLogger)

	// 6. Controllers
	return &Container{
		ChatController:     controller.NewChatController(assistantService),
		DocumentController: controller.NewDocumentController(documentService),
		ConsumerService:    consumerService,
		SysLogger:          sysLogger,
	}
}
