// Package utils contains general helper functions used across the ingestion engine.
package utils

import (
	"strings"
)

// LoggerInitializationFailedMessageFormat reports a failure to build the application logger.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal command execution errors.
const ApplicationExecutionFailedMessage = "application execution failed"

// GitDirectoryName is the name of the Git repository directory, always
// excluded from traversal.
const GitDirectoryName = ".git"

// GitIgnoreFileName is the conventional ignore file consulted during traversal.
const GitIgnoreFileName = ".gitignore"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// SplitPatternList splits a comma-separated pattern list into trimmed,
// non-empty patterns.
func SplitPatternList(list string) []string {
	var patterns []string
	for _, piece := range strings.Split(list, ",") {
		trimmedPiece := strings.TrimSpace(piece)
		if trimmedPiece != "" {
			patterns = append(patterns, trimmedPiece)
		}
	}
	return patterns
}
