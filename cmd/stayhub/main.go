package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"stayhub/internal/app/reservations"
	"stayhub/internal/domain/cancellation"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/reservation"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/clock"
	"stayhub/internal/infra/config"
	mongodb "stayhub/internal/infra/db/mongo"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/notify"
	"stayhub/internal/infra/obs"
	"stayhub/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("LISTINGS_FIXTURES", defaultListingFixturesPath())
	if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	listings listings.Repository
	ready    func() error
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, func(), error) {
	// Closers run in reverse registration order on shutdown.
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var reservationRepo reservation.Repository
	var listingRepo listings.Repository
	ready := func() error { return nil }

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, cleanup, fmt.Errorf("mongo connect: %w", err)
		}
		closers = append(closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		})
		repo, err := mongodb.NewReservationRepository(client.DB)
		if err != nil {
			return application{}, cleanup, err
		}
		reservationRepo = repo
		listingRepo = mongodb.NewListingRepository(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("using mongo storage", "db", cfg.MongoDB)
	} else {
		reservationRepo = memory.NewReservationRepository()
		listingRepo = memory.NewListingRepository()
		logger.Info("using in-memory storage")
	}

	var notifier reservations.Notifier = notify.LogNotifier{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, "stayhub")
		if err != nil {
			return application{}, cleanup, fmt.Errorf("kafka publisher: %w", err)
		}
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("kafka publisher close failed", "error", err)
			}
		})
		notifier = &notify.KafkaNotifier{Publisher: publisher}
		logger.Info("using kafka notifier", "brokers", cfg.KafkaBrokers)
	}

	calculator := pricing.NewCalculator(pricing.FeeSchedule{
		ServiceFeePercent: cfg.ServiceFeePercent,
		TaxPercent:        cfg.TaxPercent,
		CleaningFeeCents:  cfg.CleaningFeeCents,
	})
	policy := cancellation.Policy{
		FullRefundDays:    cfg.FullRefundDays,
		HalfRefundDays:    cfg.HalfRefundDays,
		HalfRefundPercent: cfg.HalfRefundPercent,
	}

	service := reservations.NewService(
		reservationRepo,
		listingRepo,
		calculator,
		policy,
		clock.System{},
		notifier,
		logger,
	)

	return application{
		handlers: ginserver.Handlers{
			Reservation: ginserver.ReservationHandler{Service: service},
			Catalog:     ginserver.CatalogHandler{Service: service},
		},
		listings: listingRepo,
		ready:    ready,
	}, cleanup, nil
}

type listingFixture struct {
	ID               string `json:"id"`
	Host             string `json:"host"`
	Title            string `json:"title"`
	MaxGuests        int    `json:"max_guests"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Currency         string `json:"currency"`
	Active           bool   `json:"active"`
}

func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	loaded := 0
	for _, fx := range fixtures {
		listing := &listings.Listing{
			ID:               listings.ListingID(fx.ID),
			Host:             listings.HostID(fx.Host),
			Title:            fx.Title,
			MaxGuests:        fx.MaxGuests,
			NightlyRateCents: fx.NightlyRateCents,
			Currency:         fx.Currency,
			Active:           fx.Active,
		}
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Warn("fixture listing rejected", "listing_id", fx.ID, "error", err)
			continue
		}
		loaded++
	}
	logger.Info("listing fixtures loaded", "count", loaded, "path", path)
	return nil
}

func defaultListingFixturesPath() string {
	return filepath.Join("fixtures", "listings.json")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
