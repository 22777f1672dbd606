package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shoptalk-ai/shoptalk/assistant/extractor"
	llmx "github.com/shoptalk-ai/shoptalk/assistant/llm"
	"github.com/shoptalk-ai/shoptalk/assistant/orchestrator"
	promptx "github.com/shoptalk-ai/shoptalk/assistant/prompt"
	"github.com/shoptalk-ai/shoptalk/catalog"
	"github.com/shoptalk-ai/shoptalk/chat"
	configx "github.com/shoptalk-ai/shoptalk/pkg/config"
	groqx "github.com/shoptalk-ai/shoptalk/pkg/groq"
	_ "github.com/shoptalk-ai/shoptalk/pkg/logger/autoload"
	postgresx "github.com/shoptalk-ai/shoptalk/pkg/postgres"
	"github.com/shoptalk-ai/shoptalk/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCfg := configx.MustLoad[postgresx.Config]("DB")
	db := postgresx.MustConnect(ctx, *pgCfg)
	defer db.Close()

	groqCfg := configx.MustLoad[groqx.Config]("GROQ")
	client := groqx.MustNew(*groqCfg)

	llmCfg := configx.MustLoad[llmx.Config]("LLM")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	gen, err := llmx.NewChatGenerator(client, llmCfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("create generator")
	}

	prompts := promptx.LoadPromptSet()

	ext, err := extractor.New(gen, prompts.Extractor, llmCfg.ExtractOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("create extractor")
	}

	store, err := catalog.NewStore(db, pgCfg.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("create catalog store")
	}

	assistant, err := orchestrator.New(gen, ext, store, orchestrator.Config{
		SystemPrompt: prompts.System,
		Generation:   llmCfg.DraftOptions(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create assistant")
	}

	repo, err := chat.NewRepository(db)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat repository")
	}
	if err := repo.CreateSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("create chat schema")
	}

	httpCfg := configx.MustLoad[server.Config]("HTTP")
	srv, err := server.New(*httpCfg, repo, assistant, store)
	if err != nil {
		log.Fatal().Err(err).Msg("create server")
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
