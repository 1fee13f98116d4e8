package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"arquiz-service/internal/app"
	"arquiz-service/internal/config"
	"arquiz-service/internal/domain"
	"arquiz-service/internal/game"
	"arquiz-service/internal/infra/memory"
	"arquiz-service/internal/infra/postgres"
	infraredis "arquiz-service/internal/infra/redis"
	"arquiz-service/internal/infra/sqlite"
	transport "arquiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server and its frame loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := contentLoader(cfg, pool)
	if err != nil {
		return err
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var contents app.ContentRepository
	if redisClient != nil {
		contents = infraredis.NewContentRepository(redisClient, loader, contentTTL)
	} else {
		contents = memory.NewContentRepository(loader, contentTTL)
	}

	var (
		sessions app.SessionRepository
		markers  *infraredis.SessionStore
	)
	if redisClient != nil {
		markers = infraredis.NewSessionStore(redisClient, redisTTL)
		sessions = markers
	} else {
		sessions = memory.NewSessionStore()
	}

	saves, closeSaves, err := openSaveStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeSaves()

	service := app.NewGameService(sessions, contents, saves, cfg.GameRules())
	wsHandler := transport.NewWSHandler(service, cfg.DefaultContent(), cfg.Game.TutorialPages)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, wsHandler, cfg.CORS.AllowedOrigins),
		ReadTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting game service on :%s (saves: %s)", finalPort, cfg.SavesDriver())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return game.NewLoop(service, cfg.TickInterval()).Run(gctx)
	})
	if markers != nil {
		g.Go(func() error {
			return markers.KeepAlive(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// contentLoader picks where content sets come from: Postgres, a YAML file, or the built-in sample.
func contentLoader(cfg config.Config, pool *pgxpool.Pool) (memory.ContentLoader, error) {
	switch {
	case pool != nil:
		return postgres.NewContentStore(pool), nil
	case cfg.Content.File != "":
		return memory.NewFileContentLoader(cfg.Content.File)
	default:
		return memory.NewStaticContentLoader(sampleContents()), nil
	}
}

func openSaveStore(cfg config.Config, redisClient *redis.Client) (app.SaveStore, func(), error) {
	noop := func() {}
	switch cfg.SavesDriver() {
	case config.SavesRedis:
		return infraredis.NewSaveStore(redisClient), noop, nil
	case config.SavesPostgres:
		db := postgres.OpenBun(cfg.Postgres.URL)
		return postgres.NewSaveStore(db), func() { _ = db.Close() }, nil
	case config.SavesSQLite:
		store, err := sqlite.NewSaveStore(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return memory.NewSaveStore(), noop, nil
	}
}

// sampleContents is a one-section content set so the server runs without a database or file.
func sampleContents() map[string]domain.Content {
	return map[string]domain.Content{
		"default": {
			ID: "default",
			Targets: []domain.ImageTargetQuestion{
				{Prompt: "Point the camera at the plant cell poster", TargetRef: "plant-cell"},
			},
			MultipleChoice: []domain.MultipleChoiceQuestion{
				{Prompt: "Which organelle carries out photosynthesis?", Alternatives: []string{"Mitochondrion", "Chloroplast", "Ribosome", "Vacuole"}, CorrectIndex: 1},
				{Prompt: "What surrounds a plant cell outside its membrane?", Alternatives: []string{"Cell wall", "Nucleus", "Cytoplasm", "Golgi body"}, CorrectIndex: 0},
				{Prompt: "Where is the genetic material stored?", Alternatives: []string{"Vacuole", "Cell wall", "Nucleus", "Chloroplast"}, CorrectIndex: 2},
				{Prompt: "Which organelle makes proteins?", Alternatives: []string{"Lysosome", "Vacuole", "Cell wall", "Ribosome"}, CorrectIndex: 3},
			},
		},
	}
}
