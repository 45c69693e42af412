package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/config"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/engine"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/database"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/database/repository/conversationrepo"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/database/transaction"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/inference"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/logger"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/observability"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/ratelimit"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/handlers/chathandler"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/handlers/conversationhandler"
	v1 "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/routes/v1"
	chatroute "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/routes/v1/chat"
	conversationroute "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/routes/v1/conversation"
)

func main() {
	ctx := context.Background()

	bootLog := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("configure logger")
	}

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	repo, err := buildRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize conversation store")
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize model providers")
	}
	log.Info().Strs("providers", registry.Names()).Msg("model providers registered")

	conversations := conversation.NewService(repo)
	window := conversation.NewWindowBuilder(cfg.SystemPrompt, cfg.ContextWindowSize)
	coordinator := engine.NewCoordinator(conversations, window, registry, cfg.TurnTimeout)

	conversationRoute := conversationroute.NewConversationRoute(
		conversationhandler.NewConversationHandler(conversations),
	)
	chatRoute := chatroute.NewChatRoute(
		chathandler.NewChatHandler(coordinator, cfg),
	)
	v1Route := v1.NewV1Route(chatRoute, conversationRoute)

	rateStore := ratelimit.NewMemoryStore(float64(cfg.RateLimitPerMin))
	server := httpserver.NewHTTPServer(v1Route, rateStore, log, cfg)

	var eg errgroup.Group
	eg.Go(func() error {
		log.Info().Int("port", cfg.MetricsPort).Msg("metrics server listening")
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		return http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux)
	})
	eg.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Msg("http server listening")
		return server.Run()
	})

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// buildRepository picks the backing store: postgres when DATABASE_URL is set,
// in-memory otherwise.
func buildRepository(cfg *config.Config) (conversation.Repository, error) {
	if cfg.DatabaseURL == "" {
		return conversation.NewMemoryRepository(), nil
	}

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migration(db); err != nil {
			return nil, err
		}
	}
	return conversationrepo.NewConversationGormRepository(transaction.NewDatabase(db)), nil
}

func buildRegistry(cfg *config.Config) (*inference.Registry, error) {
	entries := cfg.ProviderBootstrapEntries()
	providers := make([]inference.Provider, 0, len(entries))
	for _, entry := range entries {
		providers = append(providers, inference.Provider{
			Name:         entry.Name,
			Kind:         inference.ProviderKind(entry.Kind),
			BaseURL:      entry.BaseURL,
			APIKey:       entry.APIKey,
			DefaultModel: entry.DefaultModel,
		})
	}
	return inference.NewRegistry(providers)
}
