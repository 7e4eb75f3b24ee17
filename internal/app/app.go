package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"

	"TopicCurator/internal/config"
	"TopicCurator/internal/infrastructure/feed"
	"TopicCurator/internal/infrastructure/llm"
	"TopicCurator/internal/infrastructure/scheduler"
	"TopicCurator/internal/infrastructure/storage"
	"TopicCurator/internal/infrastructure/telegram"
	"TopicCurator/internal/logging"
	"TopicCurator/internal/ports"
	"TopicCurator/internal/review"
	"TopicCurator/internal/routing"
	"TopicCurator/internal/scanner"
	"TopicCurator/internal/sections"
	"TopicCurator/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
// Clients are constructed once here and injected everywhere; nothing
// holds process-global handles.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	pending  ports.PendingStore
	manager  *review.Manager
	pipeline *usecase.Pipeline
	bot      *telegram.Bot
	sched    *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	var (
		topics   ports.TopicStore
		memories ports.MemoryStore
		pending  ports.PendingStore
		decided  ports.DecisionLog
	)
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		pg := storage.NewPostgres(db)
		topics, memories, pending, decided = pg, pg, pg, pg
	} else {
		baseLogger.Warn("no database DSN configured, using in-memory store")
		mem := storage.NewMemory()
		topics, memories, pending, decided = mem, mem, mem, mem
	}
	a.pending = pending

	oracle := llm.NewOracle(cfg.Oracle)

	var notifier ports.Notifier
	var botAPI *tgbotapi.BotAPI
	if cfg.Telegram.BotToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return nil, fmt.Errorf("telegram bot: %w", err)
		}
		botAPI = api
		notifier = telegram.NewNotifier(api, cfg.Telegram.ChatID)
	}

	a.manager = review.NewManager(review.ManagerDeps{
		Pending:  pending,
		Log:      decided,
		Topics:   topics,
		Memories: memories,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "review"),
	})

	if botAPI != nil {
		a.bot = telegram.NewBot(botAPI, a.manager, baseLogger.With("component", "telegram"))
	}

	registry := scanner.NewRegistry()
	registry.Register(feed.NewArxivScanner(nil))

	source := feed.NewMulti(baseLogger.With("component", "source"),
		feed.NewRSSSource(cfg.Feeds, baseLogger.With("component", "source.rss")),
		feed.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source.sites")),
	)

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Topics:   topics,
		Memories: memories,
		Log:      decided,
		Router:   routing.NewRouter(topics, oracle, baseLogger.With("component", "router")),
		Proposer: routing.NewProposer(oracle, baseLogger.With("component", "proposer")),
		Selector: sections.NewSelector(oracle, baseLogger.With("component", "selector")),
		Rewriter: sections.NewRewriter(oracle),
		Review:   a.manager,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	a.sched = usecase.NewScheduler(scheduler.NewIntervalScheduler(cfg.Scheduler.Interval), a.pipeline)

	return a, nil
}

// RunDiscovery performs a single discovery pass over the configured
// feeds, optionally restricted to the given verticals.
func (a *Application) RunDiscovery(ctx context.Context, verticals []string) error {
	return a.pipeline.ProcessBatch(ctx, verticals)
}

// RunReview walks pending proposals over an interactive prompt.
func (a *Application) RunReview(ctx context.Context) error {
	reviewer := review.NewInteractiveReviewer(a.manager, a.pending, os.Stdin, os.Stdout)
	return reviewer.Run(ctx)
}

// RunBot starts the Telegram review poller and blocks until ctx is done.
func (a *Application) RunBot(ctx context.Context) error {
	if a.bot == nil {
		return fmt.Errorf("telegram is not configured")
	}
	return a.bot.Run(ctx)
}

// RunServe starts periodic discovery and blocks until ctx is done.
func (a *Application) RunServe(ctx context.Context) error {
	if err := a.sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return a.sched.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
