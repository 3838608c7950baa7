package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/ai"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/cache"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/config"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
)

// Deps are the collaborators the service graph is built from. Redis,
// Publisher, LLM and Clock are optional.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher app.MessageEventPublisher
	LLM       app.Completer
	Clock     app.Clock
	Logger    *zap.Logger
}

type Services struct {
	Auth      *app.AuthService
	Users     *app.UserService
	Channels  *app.ChannelService
	Messages  *app.MessageService
	Assistant *app.AssistantService
}

func NewServices(d Deps) *Services {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	userRepo := repository.NewUserRepository(d.DB)
	credRepo := repository.NewCredentialRepository(d.DB)
	channelRepo := repository.NewChannelRepository(d.DB)
	messageRepo := repository.NewMessageRepository(d.DB)
	aiChatRepo := repository.NewAIChatRepository(d.DB)

	var historyCache app.HistoryCache
	if d.Redis != nil {
		historyCache = cache.NewHistoryCache(d.Redis, cfg.Redis.HistoryTTL(), cfg.Redis.VersionTTL())
	}

	llm := d.LLM
	if llm == nil {
		llm = ai.NewClient(ai.ChatConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		}, cfg.LLM.Timeout())
	}

	channels := app.NewChannelService(channelRepo, userRepo, app.DMPolicy(cfg.Chat.DMPolicy))
	return &Services{
		Auth:      app.NewAuthService(userRepo, credRepo, cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.JWTExpiration()),
		Users:     app.NewUserService(userRepo),
		Channels:  channels,
		Messages:  app.NewMessageService(channels, messageRepo, historyCache, d.Publisher, logger.Named("messages")),
		Assistant: app.NewAssistantService(app.NewUsageLedger(aiChatRepo, d.Clock), llm, cfg.LLM.SystemPrompt, logger.Named("assistant")),
	}
}
