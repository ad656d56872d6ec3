package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/obiefood/internal/config"
	"github.com/soyeahso/obiefood/internal/dialog"
	"github.com/soyeahso/obiefood/internal/gateway"
	"github.com/soyeahso/obiefood/internal/logging"
	"github.com/soyeahso/obiefood/internal/menu"
	"github.com/soyeahso/obiefood/internal/prefs"
	"github.com/soyeahso/obiefood/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the skill gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			log, err = logging.NewWithFile(cfg.Logging.File, cfg.Logging.ConsoleStyle, effectiveLevel(cfg))
			if err != nil {
				return err
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, sessions, closeStore, err := buildDialog(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			sessions.StartSweeper(ctx)

			srv := gateway.New(cfg, engine, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}

// effectiveLevel lets --log-level win over the config file.
func effectiveLevel(cfg config.Config) string {
	if logLevel != "" {
		return logLevel
	}
	return cfg.Logging.Level
}

// buildDialog assembles the preference store, menu engine, and dialog
// engine from config. The returned close func releases the store.
func buildDialog(cfg config.Config) (*dialog.Engine, *dialog.Registry, func(), error) {
	client, closeStore, err := buildPrefsClient(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	fetcher := menu.NewHTTPFetcher(cfg.Menu.BaseURL,
		time.Duration(cfg.Menu.RequestTimeoutMs)*time.Millisecond, log)
	menus, err := menu.NewEngine(fetcher, cfg.Menu.Timezone, log)
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}

	sessions := dialog.NewRegistry(client,
		time.Duration(cfg.Prefs.FetchAbandonMs)*time.Millisecond,
		time.Duration(cfg.Session.IdleMinutes)*time.Minute, log)
	engine := dialog.NewEngine(sessions, client, menus, log)
	return engine, sessions, closeStore, nil
}

// buildPrefsClient picks the preference backend from config.
func buildPrefsClient(cfg config.Config) (prefs.Client, func(), error) {
	switch cfg.Prefs.Store {
	case "redis":
		client := prefs.NewRedisClient(cfg.Prefs.RedisAddr, cfg.Prefs.RedisPassword, cfg.Prefs.RedisDB, log)
		log.Info().Str("addr", cfg.Prefs.RedisAddr).Msg("using Redis preference store")
		return client, func() {}, nil

	case "memory":
		log.Info().Msg("using in-memory preference store")
		return prefs.NewMemoryClient(), func() {}, nil

	default: // sqlite
		if err := paths.EnsureDirs(); err != nil {
			return nil, nil, err
		}
		dbPath := filepath.Join(paths.Data, "obiefood.db")
		db, err := store.Open(dbPath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		log.Info().Str("path", dbPath).Msg("using SQLite preference store")
		return store.NewPrefStore(db), func() { db.Close() }, nil
	}
}
