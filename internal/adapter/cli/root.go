package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
	"github.com/bkyoung/review-consolidator/internal/usecase/skip"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Consolidator defines the dependency required to run the commands.
type Consolidator interface {
	Run(ctx context.Context, req consolidate.Request) (consolidate.Result, error)
	Plan(ctx context.Context, req consolidate.Request) (domain.CoveragePlan, error)
	CheckSkip(ctx context.Context, req consolidate.Request) (skip.CheckResult, error)
	CurrentBranch(ctx context.Context) (string, error)
	RecordFeedback(ctx context.Context, findingKey, status string) error
	ListRuns(ctx context.Context, limit int) ([]consolidate.StoreRun, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Consolidator      Consolidator
	Args              Arguments
	DefaultOutput     string
	DefaultRepo       string
	DefaultFormats    []string
	DefaultSummary    bool
	DefaultMaxInline  int
	DefaultMaxTargets int
	Version           string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "rc",
		Short: "Review consolidation CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(runCommand(deps))
	root.AddCommand(planCommand(deps))
	root.AddCommand(checkSkipCommand(deps.Consolidator))
	root.AddCommand(feedbackCommand(deps.Consolidator))
	root.AddCommand(runsCommand(deps.Consolidator))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}
