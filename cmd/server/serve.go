package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/telehealth-core/internal/authorize"
	"github.com/iliyamo/telehealth-core/internal/config"
	"github.com/iliyamo/telehealth-core/internal/database"
	"github.com/iliyamo/telehealth-core/internal/diagnosis"
	"github.com/iliyamo/telehealth-core/internal/handler"
	"github.com/iliyamo/telehealth-core/internal/logs"
	"github.com/iliyamo/telehealth-core/internal/middleware"
	"github.com/iliyamo/telehealth-core/internal/queue"
	"github.com/iliyamo/telehealth-core/internal/repository"
	"github.com/iliyamo/telehealth-core/internal/router"
	"github.com/iliyamo/telehealth-core/internal/service"
	"github.com/iliyamo/telehealth-core/internal/video"
)

func newServeCommand() *cobra.Command {
	var (
		autoMigrate     bool
		shutdownTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logs.New(cfg)
			slog.SetDefault(log)

			db, dialect, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if autoMigrate {
				if err := database.Migrate(cmd.Context(), db, dialect); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			policy, err := authorize.NewPolicy()
			if err != nil {
				return err
			}
			deps := service.Deps{
				Accounts:      repository.NewAccountRepo(db),
				Messages:      repository.NewMessageRepo(db),
				Prescriptions: repository.NewPrescriptionRepo(db),
				Policy:        policy,
				Publisher:     queue.NewPublisher(cfg.AMQPURL, log),
				BcryptCost:    cfg.BcryptCost,
				StoreTimeout:  cfg.StoreTimeout,
				Log:           log,
			}
			if cfg.VideoBaseURL != "" {
				rooms, err := video.NewRoomProvider(cfg.VideoBaseURL)
				if err != nil {
					return err
				}
				deps.Video = rooms
			}
			if cfg.OpenAIKey != "" {
				deps.Diagnosis = diagnosis.NewService(
					diagnosis.NewOpenAIPredictor(cfg.OpenAIKey, cfg.OpenAIModel, ""), log)
			} else {
				log.Warn("OPENAI_API_KEY not set; diagnosis disabled")
			}
			svc := service.New(deps)

			rdb := config.NewRedisClient()
			if rdb == nil {
				log.Warn("redis unavailable; rate limiting and catalog cache disabled")
			} else {
				defer rdb.Close()
			}

			e := echo.New()
			e.HideBanner = true
			e.Use(echomw.Recover())
			e.Use(echomw.RequestID())
			e.Use(requestLogger(log))

			router.Mount(e, router.Deps{
				DB:            db,
				JWTSecret:     cfg.JWTSecret,
				Auth:          handler.NewAuthHandler(cfg, svc, log),
				Chat:          handler.NewChatHandler(svc, log),
				Prescriptions: handler.NewPrescriptionHandler(svc, log),
				Diagnosis:     handler.NewDiagnosisHandler(svc, log),
				RateLimit:     middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
				Cache:         middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := ":" + cfg.Port
			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env), slog.String("db", dialect))
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(sctx)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply migrations before serving")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "maximum time to drain requests")
	return cmd
}

// requestLogger logs one line per request through slog.
func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.Any("err", v.Error))
			}
			log.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}
