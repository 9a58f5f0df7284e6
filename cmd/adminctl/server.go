package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/backend"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/config"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/db"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/logger"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server/endpoints"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the admin gateway",
	Long: `Run the admin gateway.

Configuration is read from the config file, the .env file and the environment.
With the postgres directory, database migrations are run on startup. Use
--no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		config.Set(cfg)

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if err := runServer(cfg, !noMigrate); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", "", "server listen port (overrides config)")
	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (overrides config)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.AdminConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newIssuer(cfg *config.AdminConfig) (*token.Issuer, error) {
	return token.NewIssuer(token.Config{
		AccessSecret:  cfg.AccessSecret(),
		RefreshSecret: cfg.RefreshSecret(),
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
		Issuer:        cfg.TokenIssuer,
	})
}

// buildDirectory returns the administrator directory selected by cfg.
func buildDirectory(cfg *config.AdminConfig) (directory.Directory, error) {
	switch cfg.Directory {
	case "postgres":
		gormDB, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Debug: cfg.LogLevel == "debug"})
		if err != nil {
			return nil, err
		}
		return directory.NewGorm(gormDB), nil
	default:
		hash := cfg.AdminPasswordHash
		if hash == "" {
			var err error
			if hash, err = directory.HashPassword(cfg.AdminPlainPassword()); err != nil {
				return nil, err
			}
		}
		return directory.NewStatic(directory.DefaultAdmin(cfg.AdminEmail, hash)), nil
	}
}

// configureAudit enables audit logging and, when a database is configured,
// persistence. The returned store may be nil.
func configureAudit(cfg *config.AdminConfig) (*audit.Store, error) {
	store, err := audit.NewStore(cfg.AuditDatabaseURL)
	if err != nil {
		return nil, err
	}
	var saver audit.Saver
	if store != nil {
		saver = store
	}
	audit.Configure(cfg.AuditEnabled, saver)
	return store, nil
}

func runServer(cfg *config.AdminConfig, migrateOnStart bool) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	for _, name := range cfg.InsecureDefaults() {
		log.Warnw("using insecure development default; set it before deploying", "attribute", name)
	}

	if migrateOnStart && cfg.Directory == "postgres" {
		log.Info("Running database migrations...")
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	store, err := configureAudit(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	dir, err := buildDirectory(cfg)
	if err != nil {
		return err
	}

	issuer, err := newIssuer(cfg)
	if err != nil {
		return err
	}

	// The base URL is read on every call so a config reload takes effect.
	client := backend.NewClient(func() string {
		return config.Get().BackendBaseURL()
	}, cfg.BackendCallTimeout())

	s := server.NewServer(server.Options{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.AllowedOrigins,
		Version:        version,
		Issuer:         issuer,
		Directory:      dir,
		Backend:        client,
		Log:            log,
	})
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, s, cfg, log)
}

// serve runs the server and the config watcher until ctx is cancelled or
// either of them fails.
func serve(ctx context.Context, s *server.Server, cfg *config.AdminConfig, log *zap.SugaredLogger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(s.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWindow())
		defer cancel()
		log.Info("shutting down")
		return s.Shutdown(shutdownCtx)
	})

	if path := cfg.ConfigFilePath(); fileExists(path) {
		g.Go(func() error {
			return config.Watch(gctx, path, func(reloaded *config.AdminConfig, err error) {
				if err != nil {
					log.Errorw("configuration reload failed", "path", path, "error", err)
					return
				}
				log.Infow("configuration reloaded", "path", path, "backend_url", reloaded.BackendBaseURL())
			})
		})
	}

	return g.Wait()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
