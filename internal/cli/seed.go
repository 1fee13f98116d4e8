package cli

import (
	"context"
	"fmt"
	"log"
	"sort"

	"arquiz-service/internal/config"
	"arquiz-service/internal/infra/memory"
	"arquiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads content sets from a YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate a YAML content file and store it in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with a top-level contents list")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, file string) error {
	contents, err := memory.ReadContentFile(file)
	if err != nil {
		return err
	}
	rules := cfg.GameRules()
	ids := make([]string, 0, len(contents))
	for id, content := range contents {
		if err := content.Validate(rules.SectionSize); err != nil {
			return fmt.Errorf("content %s: %w", id, err)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := runMigrations(ctx, cfg); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewContentStore(pool)
	for _, id := range ids {
		if err := store.SaveContent(ctx, contents[id]); err != nil {
			return err
		}
		log.Printf("seeded content %s (%d questions)", id, contents[id].TotalQuestions())
	}
	return nil
}
