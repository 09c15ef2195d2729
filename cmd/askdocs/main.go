// Command askdocs runs the documentation assistant as an HTTP service.
//
// Configuration comes from ASKDOCS_* environment variables (a local .env file
// is honored); see the config package for the full list.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"
	openaisdk "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/hupe1980/askdocs"
	"github.com/hupe1980/askdocs/config"
	"github.com/hupe1980/askdocs/intent"
	"github.com/hupe1980/askdocs/logging"
	"github.com/hupe1980/askdocs/model"
	"github.com/hupe1980/askdocs/model/anthropic"
	"github.com/hupe1980/askdocs/model/openai"
	retrievalweaviate "github.com/hupe1980/askdocs/retrieval/weaviate"
	"github.com/hupe1980/askdocs/server"
	"github.com/hupe1980/askdocs/session"
	badgersession "github.com/hupe1980/askdocs/session/badger"
	"github.com/hupe1980/askdocs/tool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "askdocs:", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level))

	llm, err := buildModel(cfg.Model)
	if err != nil {
		return err
	}

	searcher, err := buildSearcher(cfg.Weaviate)
	if err != nil {
		return err
	}

	store, closeStore, err := buildSessionStore(cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()

	tools := tool.NewRegistry(tool.NewSearchTool(searcher))
	classifier := intent.NewModelClassifier(llm, logger)

	assistant := askdocs.New(llm, classifier, tools, func(o *askdocs.Options) {
		o.SessionStore = store
		o.Logger = logger
		o.MaxToolCycles = cfg.Graph.MaxToolCycles
		o.MaxParallelTools = cfg.Graph.MaxParallelTools
	})

	srv := server.New(assistant, func(o *server.Options) {
		o.Addr = cfg.Server.Addr
		o.Logger = logger
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("askdocs.starting",
		"addr", cfg.Server.Addr,
		"model_provider", cfg.Model.Provider,
		"model", cfg.Model.Name,
	)
	return srv.Run(ctx)
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		var reqOpts []openaioption.RequestOption
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, openaioption.WithAPIKey(cfg.APIKey))
		}
		client := openaisdk.NewClient(reqOpts...)
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
		}), nil
	case "anthropic":
		var reqOpts []anthropicoption.RequestOption
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, anthropicoption.WithAPIKey(cfg.APIKey))
		}
		client := anthropicsdk.NewClient(reqOpts...)
		return anthropic.NewModelFromClient(&client, func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.Temperature = cfg.Temperature
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func buildSearcher(cfg config.WeaviateConfig) (*retrievalweaviate.Searcher, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid weaviate url %q", cfg.URL)
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsed.Host,
		Scheme: parsed.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	return retrievalweaviate.NewSearcher(client, func(o *retrievalweaviate.Options) {
		if cfg.ClassName != "" {
			o.ClassName = cfg.ClassName
		}
		if cfg.Limit > 0 {
			o.Limit = cfg.Limit
		}
	})
}

func buildSessionStore(cfg config.SessionConfig) (session.Store, func(), error) {
	if cfg.DataDir == "" {
		return session.NewInMemoryStore(), func() {}, nil
	}
	store, err := badgersession.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
