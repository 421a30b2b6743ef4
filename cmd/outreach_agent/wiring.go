package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/outreach-agent/internal/airtable"
	"github.com/jonathan/outreach-agent/internal/approval"
	"github.com/jonathan/outreach-agent/internal/brain"
	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/content"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/discovery"
	"github.com/jonathan/outreach-agent/internal/drafts"
	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/knowledge"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/outreach"
	"github.com/jonathan/outreach-agent/internal/resume"
	"github.com/jonathan/outreach-agent/internal/server"
	"github.com/jonathan/outreach-agent/internal/types"
)

// closers collects cleanup functions and runs them in reverse order.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func openJobStore(cfg *config.Config, logger *slog.Logger) (*airtable.Client, error) {
	return airtable.New(airtable.Config{
		APIKey:        cfg.AirtableAPIKey,
		BaseID:        cfg.AirtableBaseID,
		JobsTable:     cfg.AirtableJobsTable,
		ContactsTable: cfg.AirtableContactsTable,
		Logger:        logger,
	})
}

func openKnowledge(cfg *config.Config, logger *slog.Logger) (*knowledge.Store, error) {
	return knowledge.New(knowledge.Config{
		Token:     cfg.NotionAPIKey,
		Databases: cfg.NotionDatabases(),
		Logger:    logger,
	})
}

func openLLM(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	models := llm.DefaultConfig().
		WithModel(llm.TierDraft, cfg.DraftModel).
		WithModel(llm.TierClassify, cfg.ClassifyModel)
	client, err := llm.NewClient(ctx, models, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// openResumes connects the resume store. Without DATABASE_URL every resume
// lookup misses and context resolution records a note instead.
func openResumes(ctx context.Context, cfg *config.Config, logger *slog.Logger, cl *closers) (*resume.Resolver, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, resume lookups disabled")
		return resume.NewResolver(noResumes{}, logger), nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cl.add(database.Close)
	return resume.NewResolver(resume.NewStore(database.Querier()), logger), nil
}

// openRedis returns nil when REDIS_ADDR is not set.
func openRedis(ctx context.Context, cfg *config.Config, cl *closers) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	cl.add(func() { _ = client.Close() })
	return client, nil
}

func newGenerator(client llm.Client, cfg *config.Config, logger *slog.Logger) *outreach.Generator {
	return outreach.NewGenerator(client, outreach.GeneratorOptions{
		HunterMaxLength: cfg.HunterMaxLength,
		TargetSkill:     cfg.TargetSkill,
		Logger:          logger,
	})
}

func newNotifier(cfg *config.Config, logger *slog.Logger) approval.Notifier {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		logger.Warn("telegram not configured, approval requests go to the log")
		return approval.NewLogNotifier(logger)
	}
	notifier, err := approval.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		logger.Error("telegram unavailable, approval requests go to the log", slog.Any("error", err))
		return approval.NewLogNotifier(logger)
	}
	return notifier
}

func newDiscoverer(cfg *config.Config, store discovery.JobStore, rdb *redis.Client, logger *slog.Logger) (*discovery.Discoverer, error) {
	apollo, err := discovery.NewApolloClient(discovery.ApolloConfig{APIKey: cfg.ApolloAPIKey, Logger: logger})
	if err != nil {
		return nil, err
	}
	scraper := fetch.NewScraper(&fetch.ScrapeOptions{
		Fetch:      fetch.DefaultOptions(),
		UseBrowser: cfg.UseBrowser,
		Logger:     logger,
	})
	if rdb != nil {
		scraper = fetch.NewCachedScraper(scraper, rdb, 0, logger)
	}
	return discovery.NewDiscoverer(store, discovery.NewFinder(apollo, logger), scraper, logger), nil
}

// buildDependencies wires every collaborator the webhook can use. A
// collaborator whose configuration is missing is left nil and its actions
// report it as unavailable.
func buildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, cl *closers) (server.Dependencies, error) {
	var deps server.Dependencies

	resumes, err := openResumes(ctx, cfg, logger, cl)
	if err != nil {
		return deps, err
	}
	rdb, err := openRedis(ctx, cfg, cl)
	if err != nil {
		return deps, err
	}

	store, err := openJobStore(cfg, logger)
	if err != nil {
		logger.Warn("record store disabled", slog.Any("error", err))
	}

	var generator *outreach.Generator
	client, err := openLLM(ctx, cfg)
	if err != nil {
		logger.Warn("generation disabled", slog.Any("error", err))
	} else {
		cl.add(func() { _ = client.Close() })
		generator = newGenerator(client, cfg, logger)
		deps.Generator = generator
		deps.Classifier = brain.NewClassifier(client, logger)
	}

	pages, err := openKnowledge(cfg, logger)
	if err != nil {
		logger.Warn("knowledge base disabled", slog.Any("error", err))
	} else {
		deps.Notes = pages
		if client != nil {
			deps.Content = content.NewEngine(client, pages, logger)
		}
	}

	if store == nil {
		return deps, nil
	}
	deps.Jobs = store
	deps.Resolver = outreach.NewContextResolver(store, resumes, cfg.TargetSkill, logger)

	if generator != nil {
		var sessions drafts.Store = drafts.NewMemoryStore()
		if rdb != nil {
			sessions = drafts.NewRedisStore(rdb, cfg.DraftTTL)
		} else {
			logger.Warn("REDIS_ADDR not set, draft sessions are kept in memory")
		}
		deps.Approvals = approval.NewWorkflow(store, sessions, generator, newNotifier(cfg, logger), logger)
	}

	discoverer, err := newDiscoverer(cfg, store, rdb, logger)
	if err != nil {
		logger.Warn("contact discovery disabled", slog.Any("error", err))
	} else {
		deps.Discoverer = discoverer
	}
	return deps, nil
}

// noResumes is the resume source used without a database.
type noResumes struct{}

func (noResumes) LatestGenerated(context.Context, int) (*types.GeneratedResumeRecord, error) {
	return nil, resume.ErrNotFound
}

func (noResumes) ActiveResume(context.Context, string) (*types.BaseResume, error) {
	return nil, resume.ErrNotFound
}
