package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/medicall/internal/config"
	"github.com/evcraddock/medicall/internal/crm"
	"github.com/evcraddock/medicall/internal/db"
	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/executive"
	"github.com/evcraddock/medicall/internal/logging"
	"github.com/evcraddock/medicall/internal/mongostore"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/realtime"
	"github.com/evcraddock/medicall/internal/timeoff"
	"github.com/evcraddock/medicall/internal/web"
)

func newServeCmd() *cobra.Command {
	var envFile, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API and websocket server.

Settings come from the environment, optionally loaded from a .env file:
PORT, ENV, STORE_DRIVER (sqlite|mongo), DB_PATH, MONGODB_URI, MONGODB_DATABASE,
EXECUTIVES_FILE, CORS_ORIGINS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.Setup(cfg.IsDev())

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	var dir executive.Directory
	if cfg.ExecutivesFile != "" {
		dir, err = executive.Load(cfg.ExecutivesFile)
		if err != nil {
			return err
		}
		slog.Info("executives loaded", "count", len(dir), "file", cfg.ExecutivesFile)
	}

	hub := realtime.NewHub()
	svc := crm.NewService(stores, hub, dir)
	srv := web.NewServer(svc, hub, cfg.AllowOrigin)

	slog.Info("starting medicall", "env", cfg.Env, "store", cfg.StoreDriver, "version", Version)
	return srv.ListenAndServe(ctx, cfg.Addr())
}

// openStores opens the configured backend and returns a func releasing it.
func openStores(ctx context.Context, cfg *config.Config) (crm.Stores, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return crm.Stores{}, nil, err
		}
		closeFn := func() {
			if err := s.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: closing mongodb: %v\n", err)
			}
		}
		return crm.Stores{Doctors: s.Doctors(), Procedures: s.Procedures(), TimeOff: s.TimeOff()}, closeFn, nil

	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return crm.Stores{}, nil, err
		}
		slog.Info("opened sqlite database", "path", cfg.DBPath)
		return crm.Stores{
			Doctors:    doctor.NewRepository(database),
			Procedures: procedure.NewRepository(database),
			TimeOff:    timeoff.NewRepository(database),
		}, func() { closeDB(database) }, nil
	}
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
