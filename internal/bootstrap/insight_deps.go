package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"insight_server/adapter/out/provider/gmail"
	"insight_server/config"
	"insight_server/core/agent/llm"
	"insight_server/core/cache"
	"insight_server/core/port/out"
	"insight_server/core/service"
	"insight_server/pkg/ratelimit"
)

// Dependencies holds every wired component of the server.
type Dependencies struct {
	Redis        *redis.Client
	LLMClient    *llm.Client
	Summarizer   *llm.Summarizer
	Toner        *llm.Toner
	Orchestrator *service.Orchestrator
	Mailbox      out.MailboxSource
}

// NewDependencies wires the pipeline bottom-up. Redis and the mailbox
// source are optional; everything else always comes up. The returned
// cleanup is idempotent.
func NewDependencies(cfg *config.Config, log zerolog.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{}

	// Redis backs the shared rate-limit window when configured. The
	// limiter degrades to a local window without it.
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("invalid REDIS_URL, continuing without redis")
		} else {
			client := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := client.Ping(pingCtx).Err(); err != nil {
				log.Warn().Err(err).Msg("redis unreachable, continuing without redis")
				client.Close()
			} else {
				deps.Redis = client
				log.Info().Msg("redis connected")
			}
			cancel()
		}
	}

	limiter := ratelimit.NewLimiter(deps.Redis, nil)

	deps.LLMClient = llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenRouterAPIKey,
		BaseURL:        cfg.OpenRouterBaseURL,
		Model:          cfg.LLMModel,
		MaxTokens:      cfg.LLMMaxTokens,
		Temperature:    float32(cfg.LLMTemperature),
		RequestTimeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
	}, limiter)

	deps.Summarizer = llm.NewSummarizer(deps.LLMClient, cache.NewStore(), log).
		WithConcurrency(cfg.MapConcurrency)
	deps.Toner = llm.NewToner(deps.LLMClient, cache.NewStore(), log)

	deps.Orchestrator = service.NewOrchestrator(deps.Summarizer, deps.Toner, service.Config{
		MessageTimeout:   cfg.MessageTimeout,
		SummarizeTimeout: cfg.SummarizeTimeout,
		ToneTimeout:      cfg.ToneTimeout,
		MaxBodyChars:     cfg.MaxBodyChars,
		ChunkMaxChars:    cfg.ChunkMaxChars,
	}, log)

	// Mailbox access is optional; the scan endpoint reports a config
	// error when credentials are absent.
	if cfg.HasMailbox() {
		source, err := newMailboxSource(cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("mailbox unavailable, scan endpoint disabled")
		} else {
			deps.Mailbox = source
		}
	}

	cleanup := func() {
		deps.LLMClient.Close()
		if deps.Redis != nil {
			deps.Redis.Close()
			deps.Redis = nil
		}
	}

	return deps, cleanup, nil
}

func newMailboxSource(cfg *config.Config, log zerolog.Logger) (out.MailboxSource, error) {
	token, err := gmail.LoadToken(cfg.GoogleTokenFile)
	if err != nil {
		return nil, err
	}

	oauthCfg := gmail.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	source, err := gmail.NewSource(ctx, token, oauthCfg, log)
	if err != nil {
		return nil, err
	}

	log.Info().Str("email", source.Email()).Msg("gmail source connected")
	return source, nil
}
