package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"bread-calculator/internal/auth"
	"bread-calculator/internal/config"
	"bread-calculator/internal/logging"
	"bread-calculator/internal/server"
	"bread-calculator/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Load configuration, apply pending migrations and serve the HTTP API
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, cmd.ErrOrStderr())
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions, logOut io.Writer) error {
	cfg, log, err := bootstrap(opts, logOut)
	if err != nil {
		return err
	}
	if cfg.UsingDefaultSecret {
		log.Warn("JWT_SECRET_KEY is not set; using the development secret")
	}

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close(db)

	if err := storage.Migrate(db, cfg.Database.Driver); err != nil {
		return err
	}

	router := server.NewRouter(server.Deps{
		Store:  storage.New(db),
		Tokens: auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.AccessTokenTTL),
		Hasher: auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Logger: log,
	})

	return server.Run(ctx, cfg.HTTPAddr, router, log)
}

func bootstrap(opts *RootOptions, logOut io.Writer) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func openDatabase(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := storage.Open(storage.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.URL,
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.Database.Driver).Info("database connected")
	return db, nil
}
