package pattern_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/gitingest/internal/pattern"
)

// goWildcardPattern matches Go source files at any depth.
const goWildcardPattern = "*.go"

// testWildcardPattern matches Go test files at any depth.
const testWildcardPattern = "*_test.go"

// logWildcardPattern matches log files at any depth.
const logWildcardPattern = "*.log"

// TestDecidePrecedence verifies the rule tiers from strongest to weakest.
func TestDecidePrecedence(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		options  pattern.Options
		path     string
		isDir    bool
		expected pattern.Decision
	}{
		{
			testName: "no rules includes everything",
			options:  pattern.Options{},
			path:     "src/main.go",
			expected: pattern.Include,
		},
		{
			testName: "git directory always excluded",
			options:  pattern.Options{},
			path:     ".git",
			isDir:    true,
			expected: pattern.Exclude,
		},
		{
			testName: "git directory excluded despite matching include",
			options:  pattern.Options{IncludePatterns: []string{".git"}},
			path:     ".git",
			isDir:    true,
			expected: pattern.Exclude,
		},
		{
			testName: "user exclude wins over include",
			options: pattern.Options{
				IncludePatterns: []string{goWildcardPattern},
				ExcludePatterns: []string{testWildcardPattern},
			},
			path:     "walker_test.go",
			expected: pattern.Exclude,
		},
		{
			testName: "include allow-list admits matching file",
			options:  pattern.Options{IncludePatterns: []string{goWildcardPattern}},
			path:     "src/main.go",
			expected: pattern.Include,
		},
		{
			testName: "include allow-list rejects other files",
			options:  pattern.Options{IncludePatterns: []string{goWildcardPattern}},
			path:     "README.md",
			expected: pattern.Exclude,
		},
		{
			testName: "include allow-list keeps directories traversable",
			options:  pattern.Options{IncludePatterns: []string{goWildcardPattern}},
			path:     "docs",
			isDir:    true,
			expected: pattern.Include,
		},
		{
			testName: "default excludes reject ignore files",
			options:  pattern.Options{},
			path:     "sub/.gitignore",
			expected: pattern.Exclude,
		},
		{
			testName: "default excludes reject build artifacts",
			options:  pattern.Options{},
			path:     "node_modules",
			isDir:    true,
			expected: pattern.Exclude,
		},
		{
			testName: "default excludes reject media files",
			options:  pattern.Options{},
			path:     "assets/logo.png",
			expected: pattern.Exclude,
		},
		{
			testName: "disabled defaults admit build artifacts",
			options:  pattern.Options{DisableDefaultExcludes: true},
			path:     "node_modules",
			isDir:    true,
			expected: pattern.Include,
		},
		{
			testName: "include allow-list overrides default excludes",
			options:  pattern.Options{IncludePatterns: []string{logWildcardPattern}},
			path:     "server.log",
			expected: pattern.Include,
		},
		{
			testName: "user exclude rejects nested path",
			options:  pattern.Options{ExcludePatterns: []string{"vendor/"}},
			path:     "vendor",
			isDir:    true,
			expected: pattern.Exclude,
		},
	}
	for index, testCase := range testCases {
		matcher := pattern.Compile(testCase.options)
		actual := matcher.Decide(testCase.path, testCase.isDir)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected decision %v, got %v", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestDecideGitignoreRules verifies .gitignore integration including negation
// and the nearest-file-wins ordering.
func TestDecideGitignoreRules(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	rootIgnoreContent := "*.log\n!keep.log\nbuild/\n"
	if writeError := os.WriteFile(filepath.Join(temporaryRoot, ".gitignore"), []byte(rootIgnoreContent), 0600); writeError != nil {
		testingInstance.Fatalf("failed to write root .gitignore: %v", writeError)
	}
	nestedDirectory := filepath.Join(temporaryRoot, "sub")
	if mkdirError := os.MkdirAll(nestedDirectory, 0755); mkdirError != nil {
		testingInstance.Fatalf("failed to create nested directory: %v", mkdirError)
	}
	nestedIgnoreContent := "!debug.log\n"
	if writeError := os.WriteFile(filepath.Join(nestedDirectory, ".gitignore"), []byte(nestedIgnoreContent), 0600); writeError != nil {
		testingInstance.Fatalf("failed to write nested .gitignore: %v", writeError)
	}

	gitignorePatterns, loadError := pattern.LoadGitignorePatterns(temporaryRoot)
	if loadError != nil {
		testingInstance.Fatalf("failed to load gitignore patterns: %v", loadError)
	}
	matcher := pattern.Compile(pattern.Options{GitignorePatterns: gitignorePatterns})

	testCases := []struct {
		testName string
		path     string
		isDir    bool
		expected pattern.Decision
	}{
		{
			testName: "ignored extension excluded",
			path:     "server.log",
			expected: pattern.Exclude,
		},
		{
			testName: "negated file re-included",
			path:     "keep.log",
			expected: pattern.Include,
		},
		{
			testName: "ignored directory excluded",
			path:     "build",
			isDir:    true,
			expected: pattern.Exclude,
		},
		{
			testName: "nested negation overrides root rule",
			path:     "sub/debug.log",
			expected: pattern.Include,
		},
		{
			testName: "root rule still applies outside nested scope",
			path:     "other/debug.log",
			expected: pattern.Exclude,
		},
		{
			testName: "unrelated file included",
			path:     "main.go",
			expected: pattern.Include,
		},
	}
	for index, testCase := range testCases {
		actual := matcher.Decide(testCase.path, testCase.isDir)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected decision %v, got %v", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestDecideExcludeOverridesGitignoreNegation verifies that user excludes sit
// above gitignore negations.
func TestDecideExcludeOverridesGitignoreNegation(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	ignoreContent := "*.log\n!keep.log\n"
	if writeError := os.WriteFile(filepath.Join(temporaryRoot, ".gitignore"), []byte(ignoreContent), 0600); writeError != nil {
		testingInstance.Fatalf("failed to write .gitignore: %v", writeError)
	}
	gitignorePatterns, loadError := pattern.LoadGitignorePatterns(temporaryRoot)
	if loadError != nil {
		testingInstance.Fatalf("failed to load gitignore patterns: %v", loadError)
	}
	matcher := pattern.Compile(pattern.Options{
		ExcludePatterns:   []string{logWildcardPattern},
		GitignorePatterns: gitignorePatterns,
	})

	if decision := matcher.Decide("keep.log", false); decision != pattern.Exclude {
		testingInstance.Errorf("expected user exclude to override gitignore negation, got %v", decision)
	}
}
