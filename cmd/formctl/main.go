package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"NYCU-SDC/form-engine-backend/internal/config"
	"NYCU-SDC/form-engine-backend/internal/database"
	"NYCU-SDC/form-engine-backend/internal/form/field"
	"NYCU-SDC/form-engine-backend/internal/jwt"
	"NYCU-SDC/form-engine-backend/internal/richtext"
	"NYCU-SDC/form-engine-backend/internal/user"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errUnhealthy = errors.New("field list is not healthy")

type options struct {
	databaseURL string
	debug       bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "formctl",
		Short: "Operate the form engine database",
		Long: `Maintenance commands for the form engine.

Configuration is read from config.yaml, .env and the environment like the
server does. --database-url overrides DATABASE_URL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(fsckCmd(opts))
	cmd.AddCommand(tokenCmd(opts))

	return cmd
}

func migrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(opts, true)
			if err != nil {
				return err
			}
			return database.MigrateUp(cfg.DatabaseURL, logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, all of them when steps is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			cfg, logger, err := load(opts, true)
			if err != nil {
				return err
			}
			return database.MigrateDown(cfg.DatabaseURL, steps, logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(opts, true)
			if err != nil {
				return err
			}

			version, dirty, err := database.MigrationVersion(cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return err
		},
	})

	return cmd
}

func fsckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fsck <formId>",
		Short: "Check the field order of a form without changing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid form id %q: %w", args[0], err)
			}

			cfg, logger, err := load(opts, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer dbPool.Close()

			service := field.NewService(logger, dbPool, richtext.NewSanitizer(), nil)
			report, err := service.Inspect(ctx, formID)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				return err
			}

			if !report.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}
}

func tokenCmd(opts *options) *cobra.Command {
	var (
		username string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <userId>",
		Short: "Issue an access token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			cfg, logger, err := load(opts, false)
			if err != nil {
				return err
			}
			if cfg.Secret == config.DefaultSecret {
				logger.Warn("Signing with the default secret, the server only accepts it in debug mode")
			}
			if ttl <= 0 {
				ttl = cfg.AccessTokenTTL
			}

			service := jwt.NewService(logger, cfg.Secret, ttl)
			token, err := service.New(cmd.Context(), user.User{ID: userID, Username: username})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, defaults to the configured access token TTL")

	return cmd
}

// load resolves the configuration without the server's flag parsing.
func load(opts *options, requireDatabase bool) (config.Config, *zap.Logger, error) {
	buffer := config.NewConfigLogger()

	cfg := config.Default()
	cfg, err := config.FromFile("config.yaml", cfg)
	if err != nil && !os.IsNotExist(err) {
		buffer.Warn("Failed to load config from file", err, map[string]string{"path": "config.yaml"})
	}
	cfg, err = config.FromEnv(cfg, buffer)
	if err != nil {
		buffer.Warn("Failed to load config from env", err, map[string]string{"path": ".env"})
	}

	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	if opts.debug {
		cfg.Debug = true
	}

	zapConfig := logutil.ZapProductionConfig()
	if cfg.Debug {
		zapConfig = logutil.ZapDevelopmentConfig()
	}
	logger, err := zapConfig.Build()
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	buffer.FlushToZap(logger)

	if requireDatabase {
		if err := cfg.Validate(); err != nil {
			return cfg, logger, err
		}
	}

	return cfg, logger, nil
}
