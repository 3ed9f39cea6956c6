// cmd/tools/seed-listings/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"listing-service/internal/common/config"
	"listing-service/internal/common/database"
	"listing-service/internal/common/logger"
	"listing-service/internal/listing"
	"listing-service/internal/repository"
	"listing-service/internal/search"
)

type options struct {
	configPath string
	fixtures   string
	count      int
	agent      int64
	reindex    bool
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "seed-listings",
		Short:         "Seed the listing store and search index",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (defaults to ./configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level")

	root.AddCommand(newLoadCmd(opts), newReindexCmd(opts), newExportCmd(opts))
	return root
}

func newLoadCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert listings into PostgreSQL",
		Long: "Upserts listings from a fixtures file, or the demo dataset when no file is given.\n" +
			"Existing listings with the same id are overwritten.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.fixtures, "fixtures", "f", "", "YAML fixtures file")
	cmd.Flags().IntVarP(&opts.count, "count", "n", listing.DemoSize, "demo listings to generate when no fixtures file is given")
	cmd.Flags().Int64Var(&opts.agent, "agent", 1, "owner of generated demo listings")
	cmd.Flags().BoolVar(&opts.reindex, "reindex", false, "rebuild the search index afterwards")
	return cmd
}

func newReindexCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.close()
			return env.reindex(cmd.Context())
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the demo dataset as a fixtures file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.count <= 0 {
				return fmt.Errorf("count must be positive")
			}
			return writeFixtures(cmd.OutOrStdout(), repository.DemoProperties(opts.count, opts.agent))
		},
	}
	cmd.Flags().IntVarP(&opts.count, "count", "n", listing.DemoSize, "demo listings to export")
	cmd.Flags().Int64Var(&opts.agent, "agent", 1, "owner of the exported listings")
	return cmd
}

func runLoad(ctx context.Context, opts *options) error {
	var props []repository.Property
	if opts.fixtures != "" {
		var err error
		if props, err = readFixtures(opts.fixtures); err != nil {
			return err
		}
	} else {
		if opts.count <= 0 || opts.agent <= 0 {
			return fmt.Errorf("count and agent must be positive")
		}
		props = repository.DemoProperties(opts.count, opts.agent)
	}

	env, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.repo.Save(ctx, props); err != nil {
		return err
	}
	env.log.Info("Listings seeded", map[string]interface{}{"count": len(props)})

	if opts.reindex {
		return env.reindex(ctx)
	}
	return nil
}

type seedEnv struct {
	cfg  *config.Config
	log  logger.Logger
	pg   *database.PostgresClient
	repo repository.Repository
}

func open(ctx context.Context, opts *options) (*seedEnv, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	log := logger.NewZapAdapter(logger.New(opts.logLevel, "console"))

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}

	return &seedEnv{
		cfg:  cfg,
		log:  log,
		pg:   pg,
		repo: repository.NewPostgresRepository(pg.GetDB(), log),
	}, nil
}

func (e *seedEnv) close() { e.pg.Close() }

func (e *seedEnv) reindex(ctx context.Context) error {
	if !e.cfg.Database.Elasticsearch.Enabled {
		return fmt.Errorf("elasticsearch is disabled in the config")
	}
	es, err := database.NewElasticsearch(e.cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	index, err := search.NewIndex(es.Client, e.cfg.Listings.SearchIndex, e.log)
	if err != nil {
		return err
	}
	if err := index.EnsureIndex(ctx); err != nil {
		return err
	}

	n, err := search.NewSyncer(index, e.repo).Reindex(ctx)
	if err != nil {
		return err
	}
	e.log.Info("Search index rebuilt", map[string]interface{}{"index": index.Name(), "documents": n})
	return nil
}
