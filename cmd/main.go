package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"net/http"
	"os"
	"os/signal"
	"recipe-service/internal/api"
	"recipe-service/internal/config"
	"recipe-service/internal/consumer"
	"recipe-service/internal/repository"
	"recipe-service/internal/service"
	"recipe-service/migrations"
	"syscall"
	"time"
)

const (
	draftTTL       = time.Hour
	recipeCacheTTL = 10 * time.Minute
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func connectDB(ctx context.Context, dsn, name string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.PingContext(ctx)
			if err == nil {
				logger.Info().Msgf("Connected to DB %s", name)
				return db, nil
			}
			db.Close()
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s", i+1, name)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return nil, fmt.Errorf("failed to connect to DB %s after retries: %w", name, err)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "recipe-service",
		Short: "Recipe sharing API",
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	var retries int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := connectDB(cmd.Context(), cfg.DSN(), cfg.DBName)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.AutoMigrate(cmd.Context(), db, retries, time.Second); err != nil {
				return err
			}
			logger.Info().Msg("Migrations applied")
			return nil
		},
	}
	cmd.Flags().IntVar(&retries, "retries", 3, "retries per table while the database starts")
	return cmd
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := connectDB(ctx, cfg.DSN(), cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := migrations.AutoMigrate(ctx, db, 3, time.Second); err != nil {
			return err
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer rdb.Close()

	var publisher service.EventPublisher = service.NoopPublisher{}
	if cfg.KafkaEnabled {
		kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaWriter.Close()
		publisher = service.NewKafkaPublisher(kafkaWriter)
	}

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)

	recipeService := service.NewRecipeService(recipeRepo, repository.NewRecipeCache(rdb, recipeCacheTTL), publisher)
	userService := service.NewUserService(userRepo, repository.NewSessionStore(rdb), recipeService, cfg.JWTSecret, cfg.SessionTTL)
	formCountService := service.NewFormCountService(repository.NewCounterStore(rdb))
	ingredientService := service.NewIngredientService(ingredientRepo, recipeService, formCountService, repository.NewDraftStore(rdb, draftTTL))

	if cfg.KafkaEnabled {
		reader := config.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup)
		go consumer.NewConsumer(reader, recipeService).Run(ctx)
	}

	e := api.NewRouter(api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}, api.Services{
		Users:       userService,
		Recipes:     recipeService,
		Ingredients: ingredientService,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
