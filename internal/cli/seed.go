package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quiz-engine/internal/content"
	"quiz-engine/internal/infra/postgres"
	"quiz-engine/internal/validate"
)

// NewSeedCmd loads a catalog file (or the builtin one) into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate a quiz catalog and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}

			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.Seed(cmd.Context(), db, catalog.Categories, catalog.Quizzes); err != nil {
				return err
			}
			logger.Info("catalog seeded", "categories", len(catalog.Categories), "quizzes", len(catalog.Quizzes))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog JSON file (default: builtin catalog)")
	return cmd
}

// loadCatalog reads and validates a catalog; every quiz must pass before any is used.
func loadCatalog(file string) (content.Catalog, error) {
	catalog, err := content.LoadFile(file)
	if err != nil {
		return content.Catalog{}, err
	}
	v := validate.New()
	for _, c := range catalog.Categories {
		if err := v.Category(c); err != nil {
			return content.Catalog{}, fmt.Errorf("category %q: %w", c.ID, err)
		}
	}
	for _, q := range catalog.Quizzes {
		if err := v.Quiz(q); err != nil {
			return content.Catalog{}, err
		}
	}
	return catalog, nil
}
