package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spotbook/internal/api"
	"spotbook/internal/config"
	"spotbook/internal/database"
	"spotbook/internal/domain"
	"spotbook/internal/events"
	"spotbook/internal/logging"
	"spotbook/internal/metrics"
	"spotbook/internal/models"
	"spotbook/internal/repository"
	"spotbook/internal/service"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions := initSessions(cfg, &logger)
	defer closeSessions()

	if err := seedDatabase(ctx, cfg, db, sessions, &logger); err != nil {
		return err
	}

	eventBus := events.NewEventBus()
	subscribeAuditLog(eventBus, &logger)

	clock := service.SystemClock{}
	listings := service.NewListingService(db, cfg.Search.MaxPage, cfg.Search.MaxPageSize, cfg.Countries, &logger)
	bookings := service.NewBookingService(db, eventBus, clock, &logger)
	reviews := service.NewReviewService(db, eventBus, &logger)

	httpServer := api.NewHTTPServer(cfg, db, listings, bookings, reviews, sessions, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// initSessions builds the session store: redis with an in-memory fallback
// when configured, plain in-memory otherwise.
func initSessions(cfg *config.Config, logger *zerolog.Logger) (domain.SessionStore, func()) {
	ttl := time.Duration(cfg.Auth.SessionTTLSeconds) * time.Second
	memory := repository.NewMemorySessionStore(ttl)

	if cfg.Redis.Address == "" {
		return memory, func() {}
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory sessions")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	primary := repository.NewRedisSessionStore(client, ttl)
	store := repository.NewFailoverSessionStore(primary, memory, logger)
	return store, func() { _ = repository.Close(client) }
}

type seedUser struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Token     string `yaml:"token"`
}

type seedSpot struct {
	Owner       int     `yaml:"owner"`
	Address     string  `yaml:"address"`
	City        string  `yaml:"city"`
	State       string  `yaml:"state"`
	Country     string  `yaml:"country"`
	Lat         float64 `yaml:"lat"`
	Lng         float64 `yaml:"lng"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
}

type seedFile struct {
	Users []seedUser `yaml:"users"`
	Spots []seedSpot `yaml:"spots"`
}

// seedDatabase loads the optional seed file on first start. A spot's owner
// field is the 1-based index into the users list. Users without a token get
// a generated one, logged so local clients can pick it up.
func seedDatabase(ctx context.Context, cfg *config.Config, db *database.DB, sessions domain.SessionStore, logger *zerolog.Logger) error {
	if cfg.Seed.Path == "" {
		return nil
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(cfg.Seed.Path)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", cfg.Seed.Path).Msg("read seed file")
		return err
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("seed_path", cfg.Seed.Path).Msg("parse seed file")
		return err
	}

	userIDs := make([]int64, 0, len(seed.Users))
	for _, su := range seed.Users {
		user := &models.User{FirstName: su.FirstName, LastName: su.LastName}
		if err := db.CreateUser(ctx, user); err != nil {
			return err
		}
		userIDs = append(userIDs, user.ID)

		token := su.Token
		if token == "" {
			token = uuid.NewString()
		}
		if err := sessions.Put(ctx, token, user.ID); err != nil {
			logger.Warn().Err(err).Int64("user_id", user.ID).Msg("seed session not stored")
			continue
		}
		logger.Info().Int64("user_id", user.ID).Str("token", token).Msg("seeded user session")
	}

	for _, ss := range seed.Spots {
		if ss.Owner < 1 || ss.Owner > len(userIDs) {
			return fmt.Errorf("seed spot %q: owner index %d out of range", ss.Name, ss.Owner)
		}
		spot := &models.Spot{
			OwnerID:     userIDs[ss.Owner-1],
			Address:     ss.Address,
			City:        ss.City,
			State:       ss.State,
			Country:     ss.Country,
			Lat:         ss.Lat,
			Lng:         ss.Lng,
			Name:        ss.Name,
			Description: ss.Description,
			Price:       ss.Price,
		}
		if err := db.CreateSpot(ctx, spot); err != nil {
			return err
		}
	}

	logger.Info().Int("users", len(seed.Users)).Int("spots", len(seed.Spots)).Msg("database seeded")
	return nil
}

func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logging.Component(logger, "audit")
	handler := func(event *events.Event) error {
		audit.Info().
			Str("event_type", event.Type).
			RawJSON("payload", event.Payload).
			Time("at", event.CreatedAt).
			Msg("domain event")
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventBookingUpdated, handler)
	bus.Subscribe(events.EventBookingCanceled, handler)
	bus.Subscribe(events.EventReviewCreated, handler)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
