package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutorbot/internal/app"
	"github.com/abhisek/tutorbot/internal/classify"
	"github.com/abhisek/tutorbot/internal/dispatch"
	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/event"
	"github.com/abhisek/tutorbot/internal/guide"
	"github.com/abhisek/tutorbot/internal/llm"
	"github.com/abhisek/tutorbot/internal/progressagent"
	"github.com/abhisek/tutorbot/internal/quizmaster"
	"github.com/abhisek/tutorbot/internal/server"
	"github.com/abhisek/tutorbot/internal/session"
	"github.com/abhisek/tutorbot/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tutoring HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Sessions idle longer than this are evicted by the sweeper.
const (
	sessionIdleTimeout = 2 * time.Hour
	sweepInterval      = 10 * time.Minute
)

// runServe builds the full dependency graph and serves until SIGINT or
// SIGTERM.
func runServe(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using system env")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	repo := docstore.NewRepo(store)

	llmCfg := llm.ConfigFromEnv()
	if err := llmCfg.Validate(); err != nil {
		return fmt.Errorf("model provider config: %w", err)
	}
	provider, err := llm.NewProvider(ctx, llmCfg, repo)
	if err != nil {
		return fmt.Errorf("create model provider: %w", err)
	}

	publisher := openPublisher()
	defer publisher.Close()

	registry := session.NewRegistry()
	registry.StartSweeper(ctx, sessionIdleTimeout, sweepInterval)

	tutorSvc := tutor.New(provider, tutor.DefaultConfig())
	quizSvc := quizmaster.New(provider, repo, quizmaster.DefaultConfig())
	guideSvc := guide.New(provider, repo, guide.DefaultConfig())
	progressSvc := progressagent.New(provider, repo, progressagent.DefaultConfig())

	dispatcher := dispatch.New(
		tutorSvc, quizSvc, guideSvc, progressSvc,
		classify.HeuristicExtractor{}, repo, publisher,
		dispatch.DefaultConfig(),
	)
	appSvc := app.New(registry, dispatcher, repo, publisher)

	srvCfg := server.DefaultConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		srvCfg.Addr = addr
	} else if addr := os.Getenv("TUTORBOT_ADDR"); addr != "" {
		srvCfg.Addr = addr
	}
	if origins := os.Getenv("TUTORBOT_CORS_ORIGINS"); origins != "" {
		srvCfg.AllowOrigins = strings.Split(origins, ",")
	}

	srv := server.New(srvCfg, appSvc, tutorSvc, quizSvc, guideSvc, progressSvc, repo, publisher)
	fmt.Fprintln(os.Stderr, "listening on", srvCfg.Addr)
	return srv.Run(ctx)
}

// openStore connects to MongoDB when configured, otherwise falls back
// to the in-memory store. The fallback loses data on restart; it exists
// for local development.
func openStore(ctx context.Context) (docstore.Store, error) {
	uri := os.Getenv("TUTORBOT_MONGO_URI")
	if uri == "" {
		fmt.Fprintln(os.Stderr, "TUTORBOT_MONGO_URI not set, using in-memory store")
		return docstore.NewMemory(), nil
	}

	cfg := docstore.DefaultMongoConfig()
	cfg.URI = uri
	if db := os.Getenv("TUTORBOT_MONGO_DB"); db != "" {
		cfg.Database = db
	}

	store, err := docstore.OpenMongo(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	return store, nil
}

// openPublisher connects to RabbitMQ when configured, otherwise events
// are dropped.
func openPublisher() event.Publisher {
	uri := os.Getenv("TUTORBOT_AMQP_URI")
	if uri == "" {
		fmt.Fprintln(os.Stderr, "TUTORBOT_AMQP_URI not set, events will not be published")
		return event.Nop{}
	}

	cfg := event.DefaultAMQPConfig()
	cfg.URI = uri
	if exchange := os.Getenv("TUTORBOT_AMQP_EXCHANGE"); exchange != "" {
		cfg.Exchange = exchange
	}

	pub, err := event.NewAMQPPublisher(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "RabbitMQ unavailable, events will not be published:", err)
		return event.Nop{}
	}
	return pub
}
