package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/staybook/internal/config"
	"github.com/iliyamo/staybook/internal/database"
	"github.com/iliyamo/staybook/internal/handler"
	"github.com/iliyamo/staybook/internal/logging"
	"github.com/iliyamo/staybook/internal/middleware"
	"github.com/iliyamo/staybook/internal/queue"
	"github.com/iliyamo/staybook/internal/repository"
	"github.com/iliyamo/staybook/internal/router"
	"github.com/iliyamo/staybook/internal/service"
	"github.com/iliyamo/staybook/internal/storage"
)

// stores groups the persistence backends selected by STORE_DRIVER.
type stores struct {
	users    service.UserStore
	listings service.ListingStore
	bookings service.BookingStore
	close    func()
}

func main() {
	cfg := config.Load()
	log := logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	blobs, err := storage.New(ctx, cfg.Blob)
	if err != nil {
		log.Error("open blob store", "backend", cfg.Blob.Backend, "error", err)
		os.Exit(1)
	}

	// orphaned blobs go to RabbitMQ when a broker is configured
	var orphans service.OrphanSink = service.LogSink{Log: log}
	if cfg.RabbitURL != "" {
		orphans = queue.NewPublisher(cfg.RabbitURL, log)
		consumer := queue.NewCleanupConsumer(cfg.RabbitURL, blobs, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("blob cleanup consumer stopped", "error", err)
			}
		}()
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unreachable; rate limiting disabled", "addr", cfg.Redis.Addr)
	} else {
		defer func() { _ = rdb.Close() }()
	}

	sessions := middleware.Sessions{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL, Secure: cfg.CookieSecure}
	users := service.NewUserService(st.users, cfg.BcryptCost)
	listings := service.NewListingService(st.listings, st.bookings, blobs, orphans, log)
	bookings := service.NewBookingService(st.bookings, st.listings)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Setup(e, router.Deps{
		Log:        log,
		CORSOrigin: cfg.CORSOrigin,
		Sessions:   sessions,
		RateLimit:  middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
		Auth:       handler.NewAuthHandler(users, sessions, cfg.RequestTimeout, log),
		Uploads:    handler.NewUploadHandler(blobs, cfg.FetchTimeout, cfg.RequestTimeout, cfg.MaxUploadBytes, cfg.FetchPrivate, log),
		Places:     handler.NewPlaceHandler(listings, bookings, cfg.RequestTimeout, log),
		Bookings:   handler.NewBookingHandler(bookings, cfg.RequestTimeout, log),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver, "blobs", cfg.Blob.Backend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		mem := repository.NewMemory()
		return stores{users: mem.Users, listings: mem.Listings, bookings: mem.Bookings, close: func() {}}, nil
	}

	db, err := database.Open(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		return stores{}, err
	}
	ictx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ictx, db); err != nil {
		_ = db.Client().Disconnect(context.Background())
		return stores{}, err
	}
	return stores{
		users:    repository.NewUserRepo(db),
		listings: repository.NewListingRepo(db),
		bookings: repository.NewBookingRepo(db),
		close: func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(dctx)
		},
	}, nil
}
