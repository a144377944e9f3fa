package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-centrality/pkg/centrality"
	"github.com/dd0wney/cluso-centrality/pkg/cluster"
	"github.com/dd0wney/cluso-centrality/pkg/config"
	"github.com/dd0wney/cluso-centrality/pkg/dataset"
	"github.com/dd0wney/cluso-centrality/pkg/graph"
	"github.com/dd0wney/cluso-centrality/pkg/logging"
	"github.com/dd0wney/cluso-centrality/pkg/metrics"
	"github.com/dd0wney/cluso-centrality/pkg/results"
	"github.com/dd0wney/cluso-centrality/pkg/verify"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 2)
)

var errVerificationFailed = errors.New("local and distributed scores disagree")

func main() {
	configPath := flag.String("config", "", "Optional YAML configuration file")
	datasetURL := flag.String("dataset-url", "", "Override the dataset URL")
	datasetPath := flag.String("dataset-path", "", "Override the local dataset path")
	sampleSize := flag.Int("k", 0, "Override the number of sampled source vertices")
	seed := flag.Int64("seed", -1, "Override the sampling seed")
	workers := flag.Int("workers", 0, "Override the worker count")
	resultsDSN := flag.String("results-dsn", "", "Postgres DSN for recording run history")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics on, e.g. :9090")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("loading configuration", err)
	}
	if *datasetURL != "" {
		cfg.Dataset.URL = *datasetURL
	}
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}
	if *sampleSize > 0 {
		cfg.SampleSize = *sampleSize
	}
	if *seed >= 0 {
		cfg.Seed = *seed
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *resultsDSN != "" {
		cfg.ResultsDSN = *resultsDSN
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fatal("validating configuration", err)
	}

	if err := run(cfg); err != nil {
		if errors.Is(err, errVerificationFailed) {
			fmt.Println(failStyle.Render("✗ verification failed"))
			os.Exit(1)
		}
		fatal("benchmark run", err)
	}
}

func fatal(stage string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", stage, err)
	os.Exit(1)
}

func run(cfg config.Config) error {
	log := logging.DefaultLogger().With(logging.Component("bench"))
	runID := uuid.NewString()
	log.Info("starting benchmark run",
		logging.RunID(runID),
		logging.Int("sample_size", cfg.SampleSize),
		logging.Int64("seed", cfg.Seed),
		logging.Int("workers", cfg.Workers))

	reg := metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error("metrics server stopped", logging.Error(err))
			}
		}()
	}

	ctx := context.Background()

	var store *results.PGStore
	if cfg.ResultsDSN != "" {
		var err error
		store, err = results.NewPGStore(ctx, cfg.ResultsDSN)
		if err != nil {
			return fmt.Errorf("connecting to results store: %w", err)
		}
		defer store.Close()
	}

	fmt.Println(titleStyle.Render("Betweenness Centrality Benchmark"))
	fmt.Printf("%s %s\n", labelStyle.Render("run:"), runID)
	fmt.Printf("%s k=%d seed=%d workers=%d\n\n",
		labelStyle.Render("params:"), cfg.SampleSize, cfg.Seed, cfg.Workers)

	// Dataset
	fmt.Printf("📦 Ensuring dataset %s ...\n", cfg.Dataset.Path)
	src := dataset.Source{URL: cfg.Dataset.URL, Path: cfg.Dataset.Path}
	cached := fileExists(cfg.Dataset.Path)
	if err := dataset.Ensure(ctx, src); err != nil {
		return fmt.Errorf("ensuring dataset: %w", err)
	}
	if cached {
		reg.DatasetCacheHitsTotal.Inc()
	} else {
		reg.DatasetDownloadsTotal.Inc()
	}

	edges, err := dataset.LoadEdgeList(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("loading edge list: %w", err)
	}
	reg.DatasetEdgesLoaded.Set(float64(len(edges)))

	g := graph.Build(edges)
	edges = nil
	fmt.Printf("   %d vertices, %d edges\n\n", g.NumVertices(), g.NumEdges())

	// Local computation
	fmt.Printf("🐌 Computing local approximate betweenness ...\n")
	localStart := time.Now()
	local, err := centrality.Approximate(g, cfg.SampleSize, cfg.Seed, cfg.Workers)
	localDur := time.Since(localStart)
	if err != nil {
		reg.RecordCompute("local", "error", localDur)
		return fmt.Errorf("local computation: %w", err)
	}
	reg.RecordCompute("local", "success", localDur)
	fmt.Printf("   done in %s\n\n", localDur)

	// Cluster computation
	fmt.Printf("⚡ Starting local cluster with %d workers ...\n", cfg.Workers)
	clusterCfg := cluster.DefaultConfig(cfg.Workers)
	clusterCfg.Addrs = cfg.Cluster
	cl, err := cluster.Start(clusterCfg)
	if err != nil {
		return fmt.Errorf("starting cluster: %w", err)
	}
	defer cl.Close()
	reg.ClusterWorkers.Set(float64(cfg.Workers))

	client := cl.Client()
	defer client.Close()

	repStart := time.Now()
	if err := client.Replicate(ctx, g); err != nil {
		return fmt.Errorf("replicating graph: %w", err)
	}
	repDur := time.Since(repStart)
	reg.RecordReplication(client.SnapshotSize(), repDur)
	fmt.Printf("   graph replicated in %s\n", repDur)

	clusterStart := time.Now()
	distributed, err := client.Betweenness(ctx, cfg.SampleSize, cfg.Seed)
	clusterDur := time.Since(clusterStart)
	if err != nil {
		reg.RecordCompute("distributed", "error", clusterDur)
		return fmt.Errorf("distributed computation: %w", err)
	}
	reg.RecordCompute("distributed", "success", clusterDur)
	reg.PartialsReceived.Add(float64(cfg.Workers))
	fmt.Printf("   done in %s\n\n", clusterDur)

	// Verification
	opts := verify.DefaultOptions()
	if cfg.Tolerance.Rel > 0 {
		opts.RelTol = cfg.Tolerance.Rel
	}
	if cfg.Tolerance.Abs > 0 {
		opts.AbsTol = cfg.Tolerance.Abs
	}
	report, err := verify.Compare(local, distributed, opts)
	if err != nil {
		return fmt.Errorf("comparing results: %w", err)
	}
	reg.RecordVerification(report.Pass, report.MaxAbsDiff)

	printSummary(g, localDur, clusterDur, report)

	if store != nil {
		rec := results.RunRecord{
			RunID:            runID,
			Dataset:          cfg.Dataset.Path,
			Vertices:         g.NumVertices(),
			Edges:            g.NumEdges(),
			SampleSize:       cfg.SampleSize,
			Seed:             cfg.Seed,
			Workers:          cfg.Workers,
			LocalDuration:    localDur,
			ClusterDuration:  clusterDur,
			VerificationPass: report.Pass,
			MaxAbsDiff:       report.MaxAbsDiff,
			CreatedAt:        time.Now().UTC(),
		}
		if err := store.RecordRun(ctx, rec); err != nil {
			log.Error("recording run", logging.Error(err))
		}
	}

	if !report.Pass {
		log.Error("verification failed",
			logging.Int("mismatches", report.Mismatches),
			logging.Uint64("first_mismatch", report.FirstMismatch),
			logging.Float64("max_abs_diff", report.MaxAbsDiff))
		return errVerificationFailed
	}
	return nil
}

func printSummary(g *graph.Graph, localDur, clusterDur time.Duration, report *verify.Report) {
	verdict := passStyle.Render("✓ PASS")
	if !report.Pass {
		verdict = failStyle.Render("✗ FAIL")
	}
	speedup := "n/a"
	if clusterDur > 0 {
		speedup = fmt.Sprintf("%.2fx", localDur.Seconds()/clusterDur.Seconds())
	}
	body := fmt.Sprintf(
		"%s\n\nvertices      %d\nedges         %d\nlocal         %s\ndistributed   %s\nspeedup       %s\ncompared      %d\nmax abs diff  %.3g\nverification  %s",
		titleStyle.Render("Summary"),
		g.NumVertices(), g.NumEdges(),
		localDur, clusterDur, speedup,
		report.Compared, report.MaxAbsDiff, verdict,
	)
	fmt.Println(boxStyle.Render(body))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
