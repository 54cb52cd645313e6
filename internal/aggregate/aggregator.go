// Package aggregate reads accepted files and assembles the final ingestion
// result: concatenated content, counters, and the rendered tree.
package aggregate

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/gitingest/internal/tokenizer"
	"github.com/temirov/gitingest/internal/types"
	"github.com/temirov/gitingest/internal/utils"
)

const (
	// delimiterRuleLength is the width of the separator rule under each file header.
	delimiterRuleLength = 48

	binaryPlaceholderFormat    = "[binary file, %d bytes]\n"
	unreadablePlaceholderLine  = "[error reading file content]\n"
	invalidUTF8Replacement     = "�"
	warningFileReadFailedLabel = "failed to read file"
)

// delimiterRule separates each file header from its content block.
var delimiterRule = strings.Repeat("=", delimiterRuleLength)

// Options configures one aggregation pass.
type Options struct {
	// Workers bounds the file-read pool; non-positive means the available
	// parallelism.
	Workers int
	// TokenCounter, when set, estimates the token count of the concatenated
	// content for the summary.
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

// fileBlock is the rendered output of one entry, kept index-addressed so
// parallel reads never disturb entry order.
type fileBlock struct {
	text      string
	lineCount int
}

// Aggregate reads every accepted entry and produces the concatenated content
// and summary counters. Binary entries contribute a placeholder block and
// their byte size but no lines. Text files are decoded as UTF-8 with invalid
// sequences replaced; a read failure is logged and recorded inline rather
// than failing the whole aggregation. Reads run on a bounded worker pool;
// cancellation aborts in-flight reads and returns the context error.
func Aggregate(ctx context.Context, entries []types.FileEntry, truncated bool, options Options) (string, types.Summary, error) {
	logger := utils.EnsureLogger(options.Logger)
	workerLimit := options.Workers
	if workerLimit <= 0 {
		workerLimit = runtime.GOMAXPROCS(0)
	}

	blocks := make([]fileBlock, len(entries))
	readGroup, readContext := errgroup.WithContext(ctx)
	readGroup.SetLimit(workerLimit)

	for entryIndex, entry := range entries {
		readGroup.Go(func() error {
			if contextError := readContext.Err(); contextError != nil {
				return contextError
			}
			blocks[entryIndex] = renderEntry(entry, logger)
			return nil
		})
	}
	if waitError := readGroup.Wait(); waitError != nil {
		return "", types.Summary{}, waitError
	}

	var contentBuilder strings.Builder
	summary := types.Summary{FileCount: len(entries), Truncated: truncated}
	for entryIndex, entry := range entries {
		contentBuilder.WriteString(blocks[entryIndex].text)
		summary.TotalBytes += entry.SizeBytes
		summary.TotalLines += blocks[entryIndex].lineCount
	}
	content := contentBuilder.String()

	if options.TokenCounter != nil {
		tokenCount, countError := options.TokenCounter.CountString(content)
		if countError != nil {
			logger.Warn("token estimation failed", zap.Error(countError))
		} else {
			summary.EstimatedTokens = tokenCount
		}
	}

	return content, summary, nil
}

// renderEntry produces the delimited block for one entry.
func renderEntry(entry types.FileEntry, logger *zap.Logger) fileBlock {
	var blockBuilder strings.Builder
	blockBuilder.WriteString(entry.RelativePath)
	blockBuilder.WriteString(":\n")
	blockBuilder.WriteString(delimiterRule)
	blockBuilder.WriteString("\n")

	if entry.IsBinary {
		blockBuilder.WriteString(fmt.Sprintf(binaryPlaceholderFormat, entry.SizeBytes))
		blockBuilder.WriteString("\n")
		return fileBlock{text: blockBuilder.String()}
	}

	fileBytes, readError := os.ReadFile(entry.AbsolutePath)
	if readError != nil {
		logger.Warn(warningFileReadFailedLabel,
			zap.String("path", entry.AbsolutePath), zap.Error(readError))
		blockBuilder.WriteString(unreadablePlaceholderLine)
		blockBuilder.WriteString("\n")
		return fileBlock{text: blockBuilder.String()}
	}

	decodedContent := strings.ToValidUTF8(string(fileBytes), invalidUTF8Replacement)
	blockBuilder.WriteString(decodedContent)
	if !strings.HasSuffix(decodedContent, "\n") {
		blockBuilder.WriteString("\n")
	}
	blockBuilder.WriteString("\n")

	return fileBlock{text: blockBuilder.String(), lineCount: countLines(decodedContent)}
}

// countLines counts logical lines, including a trailing line without a newline.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	lineCount := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		lineCount++
	}
	return lineCount
}
