// Package ingest wires the ingestion pipeline: source resolution, repository
// acquisition, pattern compilation, bounded traversal, and aggregation.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/gitingest/internal/aggregate"
	"github.com/temirov/gitingest/internal/config"
	"github.com/temirov/gitingest/internal/gitrepo"
	"github.com/temirov/gitingest/internal/pattern"
	"github.com/temirov/gitingest/internal/render"
	"github.com/temirov/gitingest/internal/source"
	"github.com/temirov/gitingest/internal/tokenizer"
	"github.com/temirov/gitingest/internal/traverse"
	"github.com/temirov/gitingest/internal/types"
	"github.com/temirov/gitingest/internal/utils"
)

const (
	errorLoadGitignoreFormat = "loading gitignore rules from %s: %w"
	errorSubpathFormat       = "repository subpath %s: %w"
	errorTraversalFormat     = "traversing %s: %w"
	errorAggregationFormat   = "aggregating content of %s: %w"
)

// Request describes one ingestion call. Explicit fields override the
// engine's settings-derived defaults.
type Request struct {
	SourceRef       string
	IncludePatterns []string
	ExcludePatterns []string
	MaxFileSize     *int64
	MaxFiles        *int
	Token           string
	Branch          string
	// CountTokens enables a token estimate in the result summary.
	CountTokens bool
	// TokenizerModel selects the estimation model when CountTokens is set.
	TokenizerModel string
}

// Engine executes ingestion calls against a repository provider.
type Engine struct {
	provider gitrepo.Provider
	settings config.Settings
	logger   *zap.Logger
}

// NewEngine constructs an Engine. A nil provider selects the go-git backed
// clone provider with the settings' clone timeout.
func NewEngine(provider gitrepo.Provider, settings config.Settings, logger *zap.Logger) *Engine {
	logger = utils.EnsureLogger(logger)
	if provider == nil {
		provider = gitrepo.NewCloneProvider(settings.CloneTimeout, logger)
	}
	return &Engine{provider: provider, settings: settings, logger: logger}
}

// Ingest runs the full pipeline for one request and returns the immutable
// result. Budget overruns yield a truncated result, never an error; fatal
// failures (invalid source, acquisition failure, cancellation) return an
// error and no partial result. Any ephemeral clone is released on all exit
// paths.
func (engine *Engine) Ingest(ctx context.Context, request Request) (*types.IngestResult, error) {
	token := request.Token
	if token == "" {
		token = engine.settings.Token
	}

	resolvedSource, resolveError := source.Resolve(request.SourceRef, request.Branch, token, engine.settings.AllowedHosts)
	if resolveError != nil {
		return nil, resolveError
	}

	localRoot, release, acquireError := engine.provider.Acquire(ctx, resolvedSource)
	if acquireError != nil {
		return nil, acquireError
	}
	defer release()

	traversalRoot := localRoot
	if resolvedSource.Subpath != "" {
		traversalRoot = filepath.Join(localRoot, filepath.FromSlash(resolvedSource.Subpath))
		if _, statError := os.Stat(traversalRoot); statError != nil {
			return nil, fmt.Errorf(errorSubpathFormat, resolvedSource.Subpath, statError)
		}
	}

	gitignorePatterns, gitignoreError := pattern.LoadGitignorePatterns(traversalRoot)
	if gitignoreError != nil {
		return nil, fmt.Errorf(errorLoadGitignoreFormat, traversalRoot, gitignoreError)
	}
	matcher := pattern.Compile(pattern.Options{
		IncludePatterns:        request.IncludePatterns,
		ExcludePatterns:        request.ExcludePatterns,
		GitignorePatterns:      gitignorePatterns,
		DisableDefaultExcludes: engine.settings.DisableDefaultExcludes,
	})

	budget := types.Budget{MaxFileSize: request.MaxFileSize, MaxFiles: request.MaxFiles}
	if budget.MaxFileSize == nil {
		budget.MaxFileSize = engine.settings.MaxFileSize
	}
	if budget.MaxFiles == nil {
		budget.MaxFiles = engine.settings.MaxFiles
	}

	walkResult, walkError := traverse.Walk(ctx, traversalRoot, matcher, budget, engine.logger)
	if walkError != nil {
		return nil, fmt.Errorf(errorTraversalFormat, request.SourceRef, walkError)
	}

	var tokenCounter tokenizer.Counter
	if request.CountTokens {
		counter, counterError := tokenizer.NewCounter(request.TokenizerModel)
		if counterError != nil {
			engine.logger.Warn("token counter unavailable", zap.Error(counterError))
		} else {
			tokenCounter = counter
		}
	}

	content, summary, aggregateError := aggregate.Aggregate(ctx, walkResult.Entries, walkResult.Truncated, aggregate.Options{
		Workers:      engine.settings.Workers,
		TokenCounter: tokenCounter,
		Logger:       engine.logger,
	})
	if aggregateError != nil {
		return nil, fmt.Errorf(errorAggregationFormat, request.SourceRef, aggregateError)
	}

	return &types.IngestResult{
		RepoURL:      resolvedSource.URL,
		ShortRepoURL: shortIdentifier(resolvedSource),
		Tree:         render.TreeText(walkResult.Tree),
		Content:      content,
		Summary:      summary,
	}, nil
}

// shortIdentifier returns the compact repository identifier used in output.
func shortIdentifier(resolvedSource types.Source) string {
	if resolvedSource.Kind == types.SourceKindRemote {
		return resolvedSource.Short()
	}
	return filepath.Base(resolvedSource.Path)
}
