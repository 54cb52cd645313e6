// Package render turns ingestion results into the supported output encodings.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirov/gitingest/internal/types"
	"github.com/temirov/gitingest/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix = "/"

	treeSectionHeader     = "Directory structure:"
	markdownTreeHeader    = "## Directory structure"
	markdownSummaryHeader = "## Summary"
	markdownFilesHeader   = "## Files"

	invalidFormatMessageFormat = "unsupported output format %q"

	minimumFence = "```"
)

// TreeText renders the annotated tree skeleton using the conventional
// branch glyphs. Directories carry a trailing slash; annotated nodes show
// their note in parentheses.
func TreeText(rootNode *types.TreeNode) string {
	var treeBuilder strings.Builder
	writeTreeNode(&treeBuilder, rootNode, "", true, true)
	return treeBuilder.String()
}

// writeTreeNode appends one node line and recurses into children.
func writeTreeNode(treeBuilder *strings.Builder, node *types.TreeNode, prefix string, isRoot bool, isLast bool) {
	if node == nil {
		return
	}

	displayName := node.Name
	if node.Kind == types.NodeKindDirectory {
		displayName += directorySuffix
	}
	if node.Note != "" {
		displayName += " (" + node.Note + ")"
	}

	childPrefix := prefix
	if isRoot {
		treeBuilder.WriteString(displayName + "\n")
	} else {
		connector := treeBranchConnector
		childPrefix = prefix + treeBranchPadding
		if isLast {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		treeBuilder.WriteString(prefix + connector + displayName + "\n")
	}

	for childIndex, childNode := range node.Children {
		writeTreeNode(treeBuilder, childNode, childPrefix, false, childIndex == len(node.Children)-1)
	}
}

// SummaryText formats the human-readable summary block shared by the text
// and markdown encodings.
func SummaryText(result *types.IngestResult) string {
	var summaryBuilder strings.Builder
	summaryBuilder.WriteString(fmt.Sprintf("Repository: %s\n", result.ShortRepoURL))
	summaryBuilder.WriteString(fmt.Sprintf("Files analyzed: %d\n", result.Summary.FileCount))
	summaryBuilder.WriteString(fmt.Sprintf("Total size: %s\n", utils.FormatFileSize(result.Summary.TotalBytes)))
	summaryBuilder.WriteString(fmt.Sprintf("Total lines: %d\n", result.Summary.TotalLines))
	if result.Summary.EstimatedTokens > 0 {
		summaryBuilder.WriteString(fmt.Sprintf("Estimated tokens: %d\n", result.Summary.EstimatedTokens))
	}
	if result.Summary.Truncated {
		summaryBuilder.WriteString("Results truncated by budget limits\n")
	}
	return summaryBuilder.String()
}

// Render encodes the result in the requested format: plain text sections,
// an indented JSON record, or heading-delimited markdown.
func Render(result *types.IngestResult, format string) (string, error) {
	switch format {
	case types.FormatText:
		return renderText(result), nil
	case types.FormatJSON:
		return renderJSON(result)
	case types.FormatMarkdown:
		return renderMarkdown(result), nil
	default:
		return "", fmt.Errorf(invalidFormatMessageFormat, format)
	}
}

// renderText produces the human-readable section layout.
func renderText(result *types.IngestResult) string {
	var textBuilder strings.Builder
	textBuilder.WriteString(SummaryText(result))
	textBuilder.WriteString("\n")
	textBuilder.WriteString(treeSectionHeader + "\n")
	textBuilder.WriteString(result.Tree)
	textBuilder.WriteString("\n")
	textBuilder.WriteString(result.Content)
	return textBuilder.String()
}

// renderJSON marshals the full result record.
func renderJSON(result *types.IngestResult) (string, error) {
	encoded, encodeError := json.MarshalIndent(result, indentPrefix, indentSpacer)
	if encodeError != nil {
		return "", encodeError
	}
	return string(encoded), nil
}

// renderMarkdown produces heading-delimited sections with the tree and
// content embedded as preformatted blocks.
func renderMarkdown(result *types.IngestResult) string {
	treeFence := codeFence(result.Tree)
	contentFence := codeFence(result.Content)

	var markdownBuilder strings.Builder
	markdownBuilder.WriteString("# " + result.ShortRepoURL + "\n\n")
	markdownBuilder.WriteString(markdownSummaryHeader + "\n\n")
	markdownBuilder.WriteString(SummaryText(result))
	markdownBuilder.WriteString("\n" + markdownTreeHeader + "\n\n")
	markdownBuilder.WriteString(treeFence + "\n")
	markdownBuilder.WriteString(result.Tree)
	markdownBuilder.WriteString(treeFence + "\n\n")
	markdownBuilder.WriteString(markdownFilesHeader + "\n\n")
	markdownBuilder.WriteString(contentFence + "\n")
	markdownBuilder.WriteString(result.Content)
	markdownBuilder.WriteString(contentFence + "\n")
	return markdownBuilder.String()
}

// codeFence returns a backtick fence longer than any backtick run inside the
// embedded text, so ingested files containing fences stay contained.
func codeFence(embedded string) string {
	fence := minimumFence
	for strings.Contains(embedded, fence) {
		fence += "`"
	}
	return fence
}
