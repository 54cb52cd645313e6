// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitingest/internal/config"
	"github.com/temirov/gitingest/internal/ingest"
	"github.com/temirov/gitingest/internal/render"
	"github.com/temirov/gitingest/internal/services/clipboard"
	"github.com/temirov/gitingest/internal/types"
	"github.com/temirov/gitingest/internal/utils"
)

const (
	rootUse              = "gitingest"
	rootShortDescription = "gitingest command line interface"
	rootLongDescription  = `gitingest ingests a Git repository or local directory and produces a
structured digest: a directory tree, concatenated file contents, and summary
statistics. Sources may be local paths, repository URLs, or owner/repo
shorthand. Use --format to select text, json, or markdown output.`

	ingestUse              = "ingest <source>"
	ingestAlias            = "i"
	ingestShortDescription = "ingest a repository or directory (" + ingestAlias + ")"
	ingestLongDescription  = `Ingest a Git repository (remote URL or local path) into a digest.
Filtering supports include/exclude globs and the repository's .gitignore
rules; budgets bound the maximum file size and total file count.`
	ingestUsageExample = `  # Ingest a GitHub repository as markdown
  gitingest ingest golang/go --format markdown

  # Ingest the current directory, excluding tests, into a file
  gitingest ingest . --exclude '*_test.go' --output digest.txt

  # Ingest a private repository branch under a file budget
  gitingest ingest https://github.com/acme/api --branch develop --token $GITHUB_TOKEN --max-files 500`

	formatFlagName            = "format"
	outputFlagName            = "output"
	includeFlagName           = "include"
	excludeFlagName           = "exclude"
	maxFileSizeFlagName       = "max-file-size"
	maxFilesFlagName          = "max-files"
	branchFlagName            = "branch"
	tokenFlagName             = "token"
	tokensFlagName            = "tokens"
	modelFlagName             = "model"
	noDefaultExcludesFlagName = "no-default-excludes"
	copyFlagName              = "copy"

	formatFlagDescription            = "output format (text, json, markdown)"
	outputFlagDescription            = "write the rendered digest to a file instead of stdout"
	includeFlagDescription           = "include glob patterns, comma-separated (repeatable); switches filtering to allow-list mode"
	excludeFlagDescription           = "exclude glob patterns, comma-separated (repeatable); always wins over includes"
	maxFileSizeFlagDescription       = "maximum size in bytes of a single ingested file"
	maxFilesFlagDescription          = "maximum number of ingested files before truncation"
	branchFlagDescription            = "branch to ingest for remote sources"
	tokenFlagDescription             = "authentication token for private repositories"
	tokensFlagDescription            = "include an estimated token count in the summary"
	modelFlagDescription             = "tokenizer model used for token estimation"
	noDefaultExcludesFlagDescription = "disable the built-in exclusion patterns"
	copyFlagDescription              = "copy the rendered digest to the system clipboard"

	defaultTokenizerModelName = "gpt-4o"

	invalidFormatMessageFormat = "invalid format value %q: must be text, json, or markdown"
	writeOutputErrorFormat     = "writing output file %s: %w"
	clipboardCopyErrorFormat   = "copying digest to clipboard: %w"

	outputFilePermissions = 0o644
)

// ingestFlags collects the parsed flag values of the ingest command.
type ingestFlags struct {
	format            string
	outputPath        string
	includePatterns   []string
	excludePatterns   []string
	maxFileSize       int64
	maxFiles          int
	branch            string
	token             string
	countTokens       bool
	tokenizerModel    string
	noDefaultExcludes bool
	copyToClipboard   bool
}

// Execute runs the command line interface using the provided logger.
func Execute(logger *zap.Logger) error {
	rootCommand := newRootCommand(utils.EnsureLogger(logger))
	return rootCommand.Execute()
}

// newRootCommand assembles the cobra command tree.
func newRootCommand(logger *zap.Logger) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.AddCommand(newIngestCommand(logger))
	return rootCommand
}

// newIngestCommand builds the ingest subcommand.
func newIngestCommand(logger *zap.Logger) *cobra.Command {
	flags := &ingestFlags{}
	ingestCommand := &cobra.Command{
		Use:     ingestUse,
		Aliases: []string{ingestAlias},
		Short:   ingestShortDescription,
		Long:    ingestLongDescription,
		Example: ingestUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runIngest(command, arguments[0], flags, logger)
		},
	}

	commandFlags := ingestCommand.Flags()
	commandFlags.StringVarP(&flags.format, formatFlagName, "f", types.FormatText, formatFlagDescription)
	commandFlags.StringVarP(&flags.outputPath, outputFlagName, "o", "", outputFlagDescription)
	commandFlags.StringArrayVar(&flags.includePatterns, includeFlagName, nil, includeFlagDescription)
	commandFlags.StringArrayVar(&flags.excludePatterns, excludeFlagName, nil, excludeFlagDescription)
	commandFlags.Int64Var(&flags.maxFileSize, maxFileSizeFlagName, 0, maxFileSizeFlagDescription)
	commandFlags.IntVar(&flags.maxFiles, maxFilesFlagName, 0, maxFilesFlagDescription)
	commandFlags.StringVarP(&flags.branch, branchFlagName, "b", "", branchFlagDescription)
	commandFlags.StringVarP(&flags.token, tokenFlagName, "t", "", tokenFlagDescription)
	commandFlags.BoolVar(&flags.countTokens, tokensFlagName, false, tokensFlagDescription)
	commandFlags.StringVar(&flags.tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	commandFlags.BoolVar(&flags.noDefaultExcludes, noDefaultExcludesFlagName, false, noDefaultExcludesFlagDescription)
	commandFlags.BoolVar(&flags.copyToClipboard, copyFlagName, false, copyFlagDescription)

	return ingestCommand
}

// runIngest executes one ingestion call from parsed flags.
func runIngest(command *cobra.Command, sourceRef string, flags *ingestFlags, logger *zap.Logger) error {
	if !isSupportedFormat(flags.format) {
		return fmt.Errorf(invalidFormatMessageFormat, flags.format)
	}

	settings, settingsError := config.FromEnvironment()
	if settingsError != nil {
		return settingsError
	}
	settings.DisableDefaultExcludes = flags.noDefaultExcludes

	request := ingest.Request{
		SourceRef:       sourceRef,
		IncludePatterns: expandPatternLists(flags.includePatterns),
		ExcludePatterns: expandPatternLists(flags.excludePatterns),
		Token:           flags.token,
		Branch:          flags.branch,
		CountTokens:     flags.countTokens,
		TokenizerModel:  flags.tokenizerModel,
	}
	if command.Flags().Changed(maxFileSizeFlagName) {
		maxFileSize := flags.maxFileSize
		request.MaxFileSize = &maxFileSize
	}
	if command.Flags().Changed(maxFilesFlagName) {
		maxFiles := flags.maxFiles
		request.MaxFiles = &maxFiles
	}

	ingestContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	engine := ingest.NewEngine(nil, settings, logger)
	result, ingestError := engine.Ingest(ingestContext, request)
	if ingestError != nil {
		return ingestError
	}

	rendered, renderError := render.Render(result, flags.format)
	if renderError != nil {
		return renderError
	}

	if flags.copyToClipboard {
		if copyError := clipboard.NewService().Copy(rendered); copyError != nil {
			return fmt.Errorf(clipboardCopyErrorFormat, copyError)
		}
	}

	if flags.outputPath != "" {
		if writeError := os.WriteFile(flags.outputPath, []byte(rendered), outputFilePermissions); writeError != nil {
			return fmt.Errorf(writeOutputErrorFormat, flags.outputPath, writeError)
		}
		return nil
	}

	fmt.Fprintln(command.OutOrStdout(), rendered)
	return nil
}

// expandPatternLists splits every repeated flag value on commas so both
// comma-separated lists and repeated flags yield individual patterns.
func expandPatternLists(values []string) []string {
	var patterns []string
	for _, value := range values {
		patterns = append(patterns, utils.SplitPatternList(value)...)
	}
	return patterns
}

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatText, types.FormatJSON, types.FormatMarkdown:
		return true
	default:
		return false
	}
}
