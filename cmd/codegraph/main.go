package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/codegraph"
	"github.com/jward/codegraph/internal/config"
	"github.com/jward/codegraph/internal/graph"
	"github.com/jward/codegraph/internal/progress"
	"github.com/jward/codegraph/internal/server"
	"github.com/jward/codegraph/internal/store"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "codegraph",
	Short:         "Multi-language code knowledge graph analyzer",
	Long:          "Codegraph extracts symbols and relations from source trees using tree-sitter grammars and writes a typed code graph to an external graph service or a local SQLite database.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default: env vars with CODEGRAPH_ prefix)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(weightsCmd)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// newStore picks the backend: the HTTP graph service when a store URL is
// configured, the local SQLite database otherwise.
func newStore(cfg config.Config) (codegraph.GraphStore, func(), error) {
	if cfg.StoreURL != "" {
		return store.NewHTTPStore(cfg.StoreURL, cfg.APIKey), func() {}, nil
	}
	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { st.Close() }, nil
}

func newEngine(cfg config.Config, log *slog.Logger) (*codegraph.Engine, func(), error) {
	st, closeStore, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	var notifier progress.Notifier = progress.NopNotifier{}
	if cfg.ProgressAddr != "" {
		notifier = progress.NewTCPNotifier(cfg.ProgressAddr, cfg.APIKey)
	}
	eng := codegraph.New(st,
		codegraph.WithLogger(log),
		codegraph.WithNotifier(notifier),
		codegraph.WithBatchSize(cfg.BatchSize),
		codegraph.WithExcludeDirs(cfg.ExcludeDirs),
	)
	return eng, closeStore, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a project tree into the graph store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		root := cfg.ProjectRoot
		if len(args) == 1 {
			root = args[0]
		}

		log := newLogger()
		eng, cleanup, err := newEngine(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		start := time.Now()
		sum, err := eng.Analyze(context.Background(), root)
		if err != nil {
			return err
		}
		fmt.Printf("analyzed %d files (%d parsed, %d symbols) in %s\n",
			sum.FilesSeen, sum.FilesParsed, sum.Symbols, time.Since(start).Round(time.Millisecond))
		fmt.Printf("store: %d nodes, %d edges created, %d edges skipped\n",
			sum.NodesCreated, sum.EdgesCreated, sum.EdgesSkipped)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Resolve cross-file calls against the store's symbol index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		root := cfg.ProjectRoot
		if len(args) == 1 {
			root = args[0]
		}

		eng, cleanup, err := newEngine(cfg, newLogger())
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := eng.ResolveCalls(context.Background(), root)
		if err != nil {
			return err
		}
		fmt.Printf("resolved %d call edges\n", n)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		log := newLogger()
		eng, cleanup, err := newEngine(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := server.New(eng.Registry(), cfg.APIKey, cfg.ProjectRoot,
			func(ctx context.Context) error {
				_, err := eng.Analyze(ctx, cfg.ProjectRoot)
				return err
			}, log)

		log.Info("listening", "addr", cfg.ListenAddr)
		return http.ListenAndServe(cfg.ListenAddr, srv.Handler())
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their ontologies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		eng, cleanup, err := newEngine(cfg, newLogger())
		if err != nil {
			return err
		}
		defer cleanup()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(eng.Ontologies())
	},
}

var flagWeightsMethod string

var weightsCmd = &cobra.Command{
	Use:   "weights [path]",
	Short: "Compute edge weighting statistics for a project",
	Long:  "Extracts all relations from a project tree and prints inverse-frequency weighting statistics without writing to a store.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		root := cfg.ProjectRoot
		if len(args) == 1 {
			root = args[0]
		}

		edges, err := collectEdges(cfg, root)
		if err != nil {
			return err
		}

		var stats graph.Statistics
		if flagWeightsMethod == "softmax" {
			c := graph.NewSoftmaxWeightComputer(1.0, 1.0)
			c.Fit(edges)
			stats = c.Statistics()
		} else {
			c := graph.NewWeightComputer(1.0)
			c.Fit(edges)
			stats = c.Statistics()
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	weightsCmd.Flags().StringVar(&flagWeightsMethod, "method", "inverse_frequency", "weighting method: inverse_frequency|softmax")
}

// collectEdges runs extraction in memory, without a store, to feed the
// weighting models.
func collectEdges(cfg config.Config, root string) ([]graph.Edge, error) {
	st := &memoryStore{}
	eng := codegraph.New(st, codegraph.WithExcludeDirs(cfg.ExcludeDirs))
	if _, err := eng.Analyze(context.Background(), root); err != nil {
		return nil, err
	}
	return st.edges, nil
}

// memoryStore accumulates edges for offline weighting analysis.
type memoryStore struct {
	edges []graph.Edge
}

func (m *memoryStore) BulkInsert(_ context.Context, nodes []graph.Node, edges []graph.Edge) (store.BulkResult, error) {
	m.edges = append(m.edges, edges...)
	return store.BulkResult{NodesCreated: len(nodes), EdgesCreated: len(edges)}, nil
}

func (m *memoryStore) SymbolIndex(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}
