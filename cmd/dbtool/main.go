package main

import (
	"context"
	"log"
	"os"
	"parcel-service/internal/adapters/repositories"
	"parcel-service/internal/app"
	"parcel-service/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dbtool",
		Short:        "Prepare and seed the parcel store",
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd(), newSeedCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes (mongo) or tables (postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *app.Stores, _ *config.Config) error {
				log.Printf("Migrating store=%s...", s.Driver)
				if err := s.Migrate(ctx); err != nil {
					return err
				}
				log.Println("Migration complete.")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert parcels from a JSON or YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(ctx context.Context, s *app.Stores, cfg *config.Config) error {
				path := file
				if path == "" {
					path = cfg.SeedPath
				}

				parcels, err := repositories.LoadSeedFile(path)
				if err != nil {
					return err
				}

				if err := s.Migrate(ctx); err != nil {
					return err
				}

				log.Printf("Seeding %d parcels from %s...", len(parcels), path)
				n, err := repositories.SeedParcels(ctx, s.Parcels, parcels)
				if err != nil {
					return err
				}
				log.Printf("Seeding complete. inserted=%d", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (.json, .yaml, .yml); defaults to SEED_PATH")
	return cmd
}

func withStores(ctx context.Context, fn func(context.Context, *app.Stores, *config.Config) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	return fn(ctx, s, cfg)
}
