package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yukikurage/task-dashboard-api/internal/config"
	"github.com/yukikurage/task-dashboard-api/internal/database"
	"github.com/yukikurage/task-dashboard-api/internal/logging"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
	"github.com/yukikurage/task-dashboard-api/internal/seed"
	"github.com/yukikurage/task-dashboard-api/internal/server"
)

const shutdownTimeout = 10 * time.Second

var envFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "task-dashboard",
		Short:         "Task dashboard API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before reading the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the store schema and indexes",
		RunE:  runMigrate,
	}

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML fixture into the store",
		Long: `Load projects, users and tasks from a YAML fixture.

Tasks reference projects and users by their fixture key:

  tasks:
    - title: Build landing page
      project: website
      assignee: ann`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, seedFile)
		},
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Fixture file to load")
	_ = seedCmd.MarkFlagRequired("file")

	root.AddCommand(serveCmd, migrateCmd, seedCmd)
	return root
}

// bootstrap loads configuration, builds the logger and opens the store
func bootstrap(ctx context.Context) (*config.Config, *logrus.Logger, repository.Store, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to open store")
		return nil, nil, nil, err
	}
	return cfg, log, store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, store, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("Using in-memory store; data is lost on exit")
	}

	gin.SetMode(cfg.GinMode)
	router := server.NewRouter(server.NewServices(store, cfg, log), log)

	srv := newHTTPServer(ctx, ":"+cfg.Port, router)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newHTTPServer derives every request context from ctx so long-lived
// streams end once ctx is cancelled
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	// Opening the store runs the migrations for every driver
	_, log, store, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	closeStore(store, log)

	log.Info("Migrations completed")
	return nil
}

func runSeed(cmd *cobra.Command, file string) error {
	fixture, err := seed.LoadFile(file)
	if err != nil {
		return err
	}

	cfg, log, store, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	svc := server.NewServices(store, cfg, log)
	result, err := seed.NewSeeder(svc.Projects, svc.Users, svc.Tasks).Apply(cmd.Context(), fixture)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"projects": result.Projects,
		"users":    result.Users,
		"tasks":    result.Tasks,
	}).Info("Seed completed")
	return nil
}

func closeStore(store repository.Store, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.WithError(err).Warn("Failed to close store")
	}
}
