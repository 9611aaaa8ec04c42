package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbnb-project/hbnb/backend/internal/adapters/database"
	"github.com/hbnb-project/hbnb/backend/internal/bootstrap"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/postgres"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	"github.com/hbnb-project/hbnb/backend/pkg/config"
	"github.com/hbnb-project/hbnb/backend/pkg/secrets"
)

type cli struct {
	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "hbnbctl",
		Short:         "Maintenance commands for the HBnB backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd.Context())
		},
	}

	root.AddCommand(
		c.newMigrateCommand(),
		c.newSeedCommand(),
		c.newReindexCommand(),
	)
	return root
}

func (c *cli) loadConfig(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := secrets.ApplyVaultSecrets(ctx, secrets.LoadVaultConfigFromEnv()); err != nil {
		return fmt.Errorf("loading vault secrets: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	observability.InitLogger("hbnbctl", cfg.Env)
	c.cfg = cfg
	return nil
}

func (c *cli) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Storage.Driver != config.StorageDriverPostgres {
				return errors.New("migrate requires STORAGE_DRIVER=postgres")
			}
			pgClient, err := postgres.NewClient(&c.cfg.Database)
			if err != nil {
				return err
			}
			defer pgClient.Close()

			if err := database.Migrate(cmd.Context(), pgClient); err != nil {
				return err
			}
			observability.GetLogger().Info().Str("database", c.cfg.Database.Database).Msg("schema is up to date")
			return nil
		},
	}
}

func (c *cli) newSeedCommand() *cobra.Command {
	var adminEmail, adminPassword string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the administrator account and the default amenities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if adminEmail != "" {
				c.cfg.Seed.AdminEmail = adminEmail
			}
			if adminPassword != "" {
				c.cfg.Seed.AdminPassword = adminPassword
			}

			app, err := bootstrap.New(cmd.Context(), c.cfg, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin created: %t, amenities created: %d\n",
				result.AdminCreated, result.AmenitiesCreated)
			return nil
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "administrator email (defaults to SEED_ADMIN_EMAIL)")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "administrator password (defaults to SEED_ADMIN_PASSWORD)")
	return cmd
}

func (c *cli) newReindexCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Push every stored place to the Typesense index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.cfg.Typesense.Enabled = true

			app, err := bootstrap.New(cmd.Context(), c.cfg, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Search == nil {
				return errors.New("typesense is not reachable")
			}
			if reset {
				if err := app.Search.DropSchema(cmd.Context()); err != nil {
					observability.GetLogger().Warn().Err(err).Msg("collection not dropped")
				}
				if err := app.Search.InitSchema(cmd.Context()); err != nil {
					return err
				}
			}

			n, err := app.Services.Places.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d places\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete the places collection before reindexing")
	return cmd
}
