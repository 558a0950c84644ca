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

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/example/meetsync/internal/application"
	"github.com/example/meetsync/internal/config"
	httptransport "github.com/example/meetsync/internal/http"
	"github.com/example/meetsync/internal/logging"
	"github.com/example/meetsync/internal/persistence/sqlite"
)

func main() {
	app := &cli.App{
		Name:  "meetsync",
		Usage: "Availability driven meeting coordination service.",
		Commands: []*cli.Command{
			serveCommand(),
			userCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the meetsync HTTP API.",
		Action: func(c *cli.Context) error {
			logger := logging.New(os.Stdout, os.Getenv("MEETSYNC_LOG_LEVEL"))

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := sqlite.Open(cfg.SQLiteDSN)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() {
				if cerr := store.Close(); cerr != nil {
					logger.Error("failed to close storage", "error", cerr)
				}
			}()

			if err := store.Migrate(context.Background()); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}

			idGenerator := uuid.NewString
			now := time.Now

			meetingService := application.NewMeetingService(store, store, idGenerator, now, logger)
			slotService := application.NewSlotService(store, store, now, logger)
			availabilityService := application.NewAvailabilityService(store, now, logger)
			identityService := application.NewIdentityService(store, store, idGenerator, now, logger).
				WithTokenTTL(cfg.TokenTTL)

			router := httptransport.NewRouter(httptransport.RouterConfig{
				Identity:     httptransport.NewIdentityHandler(identityService, logger),
				Profile:      httptransport.NewProfileHandler(availabilityService, logger),
				Meetings:     httptransport.NewMeetingHandler(meetingService, slotService, logger),
				Feed:         httptransport.NewFeedHandler(store, logger),
				Authenticate: httptransport.RequireToken(identityService, logger),
				Middleware: []func(http.Handler) http.Handler{
					httptransport.RequestLogger(logger),
					corsMiddleware(cfg.CORSOrigins),
				},
			})

			janitor := cron.New()
			if _, err := janitor.AddFunc(cfg.TokenPurgeSpec, func() {
				if err := identityService.PurgeExpired(context.Background()); err != nil {
					logger.Error("token purge failed", "error", err)
				}
			}); err != nil {
				return fmt.Errorf("invalid token purge schedule %q: %w", cfg.TokenPurgeSpec, err)
			}
			janitor.Start()
			defer janitor.Stop()

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("failed to shutdown server", "error", err)
				}
			}()

			logger.Info("meetsync API listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Account administration.",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Provision an account.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "first-name", Required: true},
					&cli.StringFlag{Name: "last-name"},
				},
				Action: func(c *cli.Context) error {
					logger := logging.New(os.Stderr, os.Getenv("MEETSYNC_LOG_LEVEL"))
					identityService, cleanup, err := openIdentityService(logger)
					if err != nil {
						return err
					}
					defer cleanup()

					user, err := identityService.CreateUser(c.Context, application.NewUserInput{
						Email:     c.String("email"),
						FirstName: c.String("first-name"),
						LastName:  c.String("last-name"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("created user %s (%s)\n", user.ID, user.Email)
					return nil
				},
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Access token administration.",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a bearer token for an account.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: func(c *cli.Context) error {
					logger := logging.New(os.Stderr, os.Getenv("MEETSYNC_LOG_LEVEL"))
					identityService, cleanup, err := openIdentityService(logger)
					if err != nil {
						return err
					}
					defer cleanup()

					token, err := identityService.IssueToken(c.Context, c.String("email"))
					if err != nil {
						return err
					}
					// The secret is printed once and never recoverable.
					fmt.Println(token)
					return nil
				},
			},
			{
				Name:  "purge",
				Usage: "Delete expired tokens.",
				Action: func(c *cli.Context) error {
					logger := logging.New(os.Stderr, os.Getenv("MEETSYNC_LOG_LEVEL"))
					identityService, cleanup, err := openIdentityService(logger)
					if err != nil {
						return err
					}
					defer cleanup()

					return identityService.PurgeExpired(c.Context)
				},
			},
		},
	}
}

func openIdentityService(logger *slog.Logger) (*application.IdentityService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	cleanup := func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}
	service := application.NewIdentityService(store, store, uuid.NewString, time.Now, logger).
		WithTokenTTL(cfg.TokenTTL)
	return service, cleanup, nil
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
}
