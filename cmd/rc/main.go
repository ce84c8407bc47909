package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/review-consolidator/internal/adapter/cli"
	"github.com/bkyoung/review-consolidator/internal/adapter/git"
	"github.com/bkyoung/review-consolidator/internal/adapter/ingest"
	"github.com/bkyoung/review-consolidator/internal/adapter/observability"
	"github.com/bkyoung/review-consolidator/internal/adapter/output/json"
	"github.com/bkyoung/review-consolidator/internal/adapter/output/markdown"
	"github.com/bkyoung/review-consolidator/internal/adapter/output/sarif"
	storeAdapter "github.com/bkyoung/review-consolidator/internal/adapter/store"
	"github.com/bkyoung/review-consolidator/internal/adapter/store/sqlite"
	"github.com/bkyoung/review-consolidator/internal/config"
	"github.com/bkyoung/review-consolidator/internal/redaction"
	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
	"github.com/bkyoung/review-consolidator/internal/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrShouldReview) {
			// check-skip found no trigger; the command already printed
			// the verdict, so signal via exit code alone.
			os.Exit(1)
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "rc",
		EnvPrefix:   "RC",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	repoName := repositoryName(repoDir)
	gitEngine := git.NewEngine(repoDir)

	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	markdownWriter := markdown.NewWriter(nowFunc)
	jsonWriter := json.NewWriter(nowFunc)
	sarifWriter := sarif.NewWriter(nowFunc)

	var logger consolidate.Logger
	if cfg.Logging.Enabled {
		logger = observability.NewLogger(
			observability.ParseLevel(cfg.Logging.Level),
			observability.ParseFormat(cfg.Logging.Format),
		)
	}

	// Instantiate redaction engine if enabled
	var redactor consolidate.Redactor
	if cfg.Redaction.Enabled {
		engine, err := redaction.NewEngine(cfg.Redaction.Patterns...)
		if err != nil {
			log.Printf("warning: ignoring custom redaction patterns: %v", err)
			engine, _ = redaction.NewEngine()
		}
		redactor = engine
	}

	// Initialize store if enabled
	var runStore consolidate.Store
	if cfg.Store.Enabled {
		// Create store directory if it doesn't exist
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			// Initialize SQLite store
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				// Wrap in adapter bridge
				runStore = storeAdapter.NewBridge(sqliteStore)
				// Ensure store is closed on exit
				defer runStore.Close()
			}
		}
	}

	passes := ingest.NewReader(os.Stdin)

	orchestrator := consolidate.NewOrchestrator(consolidate.OrchestratorDeps{
		Git:      gitEngine,
		Passes:   passes,
		Markdown: markdownWriter,
		JSON:     jsonWriter,
		SARIF:    sarifWriter,
		Redactor: redactor,
		Store:    runStore,
		Logger:   logger,
		Feedback: consolidate.FeedbackThresholds{
			MinObservations:   cfg.Feedback.MinObservations,
			BoostThreshold:    cfg.Feedback.BoostThreshold,
			PenalizeThreshold: cfg.Feedback.PenalizeThreshold,
		},
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Consolidator:      orchestrator,
		DefaultOutput:     cfg.Output.Directory,
		DefaultRepo:       repoName,
		DefaultFormats:    cfg.Output.Formats,
		DefaultSummary:    cfg.Mode.SummaryOnly,
		DefaultMaxInline:  cfg.Limits.MaxInlineComments,
		DefaultMaxTargets: cfg.Limits.MaxTargets,
		Version:           version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		if errors.Is(err, cli.ErrShouldReview) {
			return err
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rc"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ consolidate.GitEngine = (*git.Engine)(nil)
var _ consolidate.PassReader = (*ingest.Reader)(nil)
var _ consolidate.MarkdownWriter = (*markdown.Writer)(nil)
var _ consolidate.JSONWriter = (*json.Writer)(nil)
var _ consolidate.SARIFWriter = (*sarif.Writer)(nil)
var _ consolidate.Redactor = (*redaction.Engine)(nil)
var _ consolidate.Store = (*storeAdapter.Bridge)(nil)
var _ consolidate.Logger = (*observability.DefaultLogger)(nil)
var _ cli.Consolidator = (*consolidate.Orchestrator)(nil)
