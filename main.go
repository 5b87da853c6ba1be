// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fehmi19/cheebo/config"
	"github.com/fehmi19/cheebo/controllers"
	"github.com/fehmi19/cheebo/middleware"
	"github.com/fehmi19/cheebo/repository"
	"github.com/fehmi19/cheebo/routes"
	"github.com/fehmi19/cheebo/seed"
	"github.com/fehmi19/cheebo/utils"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

func main() {
	seedOnly := flag.Bool("seed", false, "reset the database with demo data and exit")
	flag.Parse()

	bootLog := utils.NewLogger("info", "json")

	// Load environment variables from .env file
	if err := config.LoadDotEnv(); err != nil {
		bootLog.Fatal().Err(err).Msg("read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *seedOnly); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, seedOnly bool) error {
	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("disconnect mongodb")
		}
	}()
	db := client.Database(cfg.MongoDatabase)
	log.Info().Str("database", cfg.MongoDatabase).Msg("mongodb connected")

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	store := repository.NewMongoStore(db, utils.NextOrderNumber)

	if seedOnly {
		sum, err := seed.Run(ctx, db, store, log)
		if err != nil {
			return err
		}
		log.Info().
			Str("created", sum.String()).
			Str("admin", seed.AdminEmail).
			Msg("seed complete")
		return nil
	}

	emailService := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender, log)
	if !emailService.Enabled() {
		log.Warn().Msg("POSTMARK_API_TOKEN not set, emails are logged only")
	}
	jwt := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	auth := middleware.NewAuthenticator(jwt, store.Users)

	// Initialize controllers
	handlers := routes.Controllers{
		Users:    controllers.NewUserController(store.Users, store.Orders, jwt, emailService),
		Products: controllers.NewProductController(store.Products),
		Orders:   controllers.NewOrderController(store.Orders, store.Products, store.Users, emailService),
		Pets:     controllers.NewPetController(store.Pets),
		Vets:     controllers.NewVetController(store.Vets),
		Posts:    controllers.NewPostController(store.Posts),
		Tasks:    controllers.NewTaskController(store.Tasks),
		Uploads:  controllers.NewUploadController(cfg.UploadDir, cfg.UploadMaxBytes),
	}
	router := routes.NewRouter(handlers, auth, routes.Options{
		Logger:         log,
		Metrics:        middleware.NewMetrics(),
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  cfg.RateLimit,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
