// Package pattern compiles user globs and .gitignore rules into a single
// path decision function.
package pattern

import (
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/temirov/gitingest/internal/utils"
)

// Decision is the outcome of matching a path against the compiled rules.
type Decision int

const (
	// Include admits the path into traversal and aggregation.
	Include Decision = iota
	// Exclude rejects the path; excluded directories are never descended into.
	Exclude
)

const pathSeparator = "/"

// gitDirectoryPattern always excludes the repository metadata directory.
var gitDirectoryPattern = gitignore.ParsePattern(utils.GitDirectoryName+pathSeparator, nil)

// DefaultExcludes lists the built-in exclusion patterns applied at the
// lowest precedence: version control internals, build artifacts, editor
// droppings, and common binary or media extensions.
var DefaultExcludes = []string{
	".svn/", ".hg/", utils.GitIgnoreFileName,
	"target/", "build/", "dist/", "node_modules/", "__pycache__/", "*.pyc",
	".vscode/", ".idea/", "*.swp", "*.swo", ".DS_Store",
	"*.log", "*.tmp", "*.temp",
	"*.exe", "*.dll", "*.so", "*.dylib", "*.a", "*.lib",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.pdf", "*.mp4", "*.mp3", "*.wav",
}

// Matcher resolves include/exclude decisions for relative paths. Precedence,
// highest to lowest: explicit user excludes, user include allow-list,
// .gitignore rules (nearest directory first, negation respected), built-in
// default excludes, default include.
type Matcher struct {
	excludePatterns   []gitignore.Pattern
	includePatterns   []gitignore.Pattern
	gitignorePatterns []gitignore.Pattern
	defaultPatterns   []gitignore.Pattern
}

// Options configures matcher compilation.
type Options struct {
	IncludePatterns []string
	ExcludePatterns []string
	// GitignorePatterns carries rules parsed from the traversed tree's
	// .gitignore files, ordered root-first so deeper rules take precedence.
	GitignorePatterns []gitignore.Pattern
	// DisableDefaultExcludes turns off the built-in exclusion set.
	DisableDefaultExcludes bool
}

// Compile builds a Matcher from the provided rule sets. The .git directory
// is always excluded regardless of options.
func Compile(options Options) *Matcher {
	matcher := &Matcher{
		excludePatterns:   parseAll(utils.DeduplicatePatterns(options.ExcludePatterns)),
		includePatterns:   parseAll(utils.DeduplicatePatterns(options.IncludePatterns)),
		gitignorePatterns: options.GitignorePatterns,
	}
	matcher.excludePatterns = append(matcher.excludePatterns, gitDirectoryPattern)
	if !options.DisableDefaultExcludes {
		matcher.defaultPatterns = parseAll(DefaultExcludes)
	}
	return matcher
}

// LoadGitignorePatterns collects the rules of every .gitignore file under
// root. Each rule is scoped to the directory subtree containing its defining
// file; deeper files appear later so their rules win over broader ones.
func LoadGitignorePatterns(root string) ([]gitignore.Pattern, error) {
	return gitignore.ReadPatterns(osfs.New(root), nil)
}

// Decide classifies a root-relative, slash-separated path. Directories are
// pruned only by exclusion rules; the include allow-list applies to files,
// so directories stay traversable while their contents are filtered.
func (matcher *Matcher) Decide(relativePath string, isDir bool) Decision {
	pathSegments := strings.Split(strings.Trim(relativePath, pathSeparator), pathSeparator)

	if matchLastDecisive(matcher.excludePatterns, pathSegments, isDir) == gitignore.Exclude {
		return Exclude
	}

	if len(matcher.includePatterns) > 0 && !isDir {
		if matchLastDecisive(matcher.includePatterns, pathSegments, isDir) == gitignore.Exclude {
			return Include
		}
		return Exclude
	}

	switch matchLastDecisive(matcher.gitignorePatterns, pathSegments, isDir) {
	case gitignore.Exclude:
		return Exclude
	case gitignore.Include:
		return Include
	}

	if matchLastDecisive(matcher.defaultPatterns, pathSegments, isDir) == gitignore.Exclude {
		return Exclude
	}

	return Include
}

// matchLastDecisive evaluates patterns in reverse order and returns the first
// decisive result, implementing gitignore's later-rules-override semantics.
func matchLastDecisive(patterns []gitignore.Pattern, pathSegments []string, isDir bool) gitignore.MatchResult {
	for patternIndex := len(patterns) - 1; patternIndex >= 0; patternIndex-- {
		if result := patterns[patternIndex].Match(pathSegments, isDir); result != gitignore.NoMatch {
			return result
		}
	}
	return gitignore.NoMatch
}

// parseAll compiles raw glob strings as unscoped rules.
func parseAll(rawPatterns []string) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	for _, rawPattern := range rawPatterns {
		trimmedPattern := strings.TrimSpace(rawPattern)
		if trimmedPattern == "" {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(trimmedPattern, nil))
	}
	return patterns
}
