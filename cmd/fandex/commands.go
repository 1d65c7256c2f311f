package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/fandex/internal/catalog"
	"github.com/hyperjump/fandex/internal/cli"
	"github.com/hyperjump/fandex/internal/config"
	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/server"
	"github.com/hyperjump/fandex/pkg/utils"
)

// setup loads the config, applies --catalog flags and builds a logger.
// Servers log JSON to stdout; one-shot commands log to stderr.
func setup(opts *globalOptions, serverMode bool) (*config.Config, *zap.Logger, error) {
	cfg, path, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyCatalogFlags(cfg, opts.catalogs); err != nil {
		return nil, nil, err
	}
	debug := cfg.Debug || opts.debug

	var logger *zap.Logger
	if serverMode {
		logger, err = utils.NewLogger(debug)
	} else {
		logger, err = utils.NewCLILogger(debug)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", path), zap.Bool("debug", debug))
	return cfg, logger, nil
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts, true)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			components, err := initializeComponents(ctx, cfg, logger)
			if err != nil {
				logger.Fatal("Failed to initialize components", zap.Error(err))
			}
			defer components.Close()

			if cfg.Catalog.Watch || watch {
				if err := components.Loader.Watch(ctx); err != nil {
					logger.Fatal("Failed to start catalog watcher", zap.Error(err))
				}
			}

			srv := server.NewServer(components.Service, components.Store, &cfg.Server, logger)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("Server failed", zap.Error(err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			logger.Info("Shutting down...")
			cancel()
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			return srv.Stop(stopCtx)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "reload catalog files when they change")
	return cmd
}

type searchFlags struct {
	domain   string
	limit    int
	minScore float64
	remote   bool
	explain  bool
	jsonOut  bool
	filters  models.Filters
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search [flags] <query>",
		Short: "Search one domain, or every domain when --domain is not set",
		Long: `Search the catalogs. The query is all remaining arguments joined by spaces,
so multi-word queries work with or without quotes. An empty query lists the
catalog in its original order.`,
		Example: `  fandex search --catalog anime=./anime.json nuruto
  fandex search --domain manga --genre seinen --year-from 1990 berserk
  fandex search --domain anime --explain snk`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), opts, f, buildSearchQuery(args), cmd)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.domain, "domain", "", "domain to search: anime, manga or quiz (default all)")
	fl.IntVar(&f.limit, "limit", 0, "number of results (default from config)")
	fl.Float64Var(&f.minScore, "min-score", 0, "minimum relevance score in [0, 1] (default from config)")
	fl.BoolVar(&f.remote, "remote", false, "use the remote enhancer when configured")
	fl.BoolVar(&f.explain, "explain", false, "print the score breakdown of each result")
	fl.BoolVar(&f.jsonOut, "json", false, "print JSON")
	fl.StringSliceVar(&f.filters.Genres, "genre", nil, "require genre (repeatable)")
	fl.StringSliceVar(&f.filters.Tags, "tag", nil, "require tag (repeatable)")
	fl.StringVar(&f.filters.Creator, "creator", "", "require studio or author")
	fl.StringVar(&f.filters.Difficulty, "difficulty", "", "require quiz difficulty")
	fl.Float64Var(&f.filters.MinRating, "min-rating", 0, "minimum rating")
	fl.IntVar(&f.filters.YearFrom, "year-from", 0, "earliest year")
	fl.IntVar(&f.filters.YearTo, "year-to", 0, "latest year")
	return cmd
}

func runSearch(ctx context.Context, opts *globalOptions, f *searchFlags, query string, cmd *cobra.Command) error {
	cfg, logger, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	q := &models.SearchQuery{
		Query:    query,
		Domain:   models.Domain(f.domain),
		Limit:    f.limit,
		MinScore: f.minScore,
		Remote:   f.remote,
		Filters:  f.filters,
	}
	out := cmd.OutOrStdout()
	format := cli.ParseFormat(f.jsonOut)

	if q.Domain == "" {
		resp, err := components.Service.SearchAll(ctx, q)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return cli.WriteMultiSearchResults(out, resp, format)
	}

	resp, err := components.Service.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if err := cli.WriteSearchResults(out, resp, format); err != nil {
		return err
	}
	if f.explain && !f.jsonOut && len(resp.Results) > 0 {
		engine, err := components.Service.Engine(resp.Domain)
		if err != nil {
			return err
		}
		analyzed := engine.Analyze(query)
		fmt.Fprintln(out, "Score breakdown:")
		for _, r := range resp.Results {
			cli.WriteExplain(out, r.Item.ItemTitle(), engine.Ranker().Explain(analyzed, r.Item))
		}
	}
	return nil
}

func newSuggestCmd(opts *globalOptions) *cobra.Command {
	var (
		domain  string
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "suggest --domain <domain> <partial>",
		Short: "Autocomplete a partial query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := models.ParseDomain(domain)
			if err != nil {
				return err
			}
			cfg, logger, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			components, err := initializeComponents(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			suggestions, err := components.Service.Suggest(d, buildSearchQuery(args), limit)
			if err != nil {
				return err
			}
			return cli.WriteSuggestions(cmd.OutOrStdout(), suggestions, cli.ParseFormat(jsonOut))
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "domain: anime, manga or quiz")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of suggestions")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newSimilarCmd(opts *globalOptions) *cobra.Command {
	var (
		domain  string
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "similar --domain <domain> <id>",
		Short: "List items similar to a catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := models.ParseDomain(domain)
			if err != nil {
				return err
			}
			cfg, logger, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			components, err := initializeComponents(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			recs, err := components.Service.Similar(d, args[0], limit)
			if err != nil {
				return err
			}
			return cli.WriteSimilar(cmd.OutOrStdout(), recs, cli.ParseFormat(jsonOut))
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "domain: anime, manga or quiz")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of similar items")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var (
		domain string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "import --domain <domain> --db <file.db> <catalog.json|yaml>...",
		Short: "Import JSON or YAML catalog files into a SQLite catalog",
		Long: `Import catalog files into a SQLite database. Items are inserted or updated
by id; items without an id get a generated UUID.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := models.ParseDomain(domain)
			if err != nil {
				return err
			}
			logger, err := utils.NewCLILogger(opts.debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			n, err := importCatalogs(cmd.Context(), d, dbPath, args, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s items into %s\n", n, d, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "domain: anime, manga or quiz")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

// importCatalogs reads every file without id validation, so items lacking
// an id can be assigned one by the store.
func importCatalogs(ctx context.Context, d models.Domain, dbPath string, paths []string, logger *zap.Logger) (int, error) {
	store, err := catalog.NewSQLiteStore(dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	total := 0
	for _, path := range paths {
		items, err := catalog.ReadFile(d, path)
		if err != nil {
			return total, err
		}
		n, err := store.Upsert(ctx, d, items)
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("Imported catalog file", zap.String("path", path), zap.Int("items", n))
		total += n
	}
	return total, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fandex version %s\n", version)
		},
	}
}
