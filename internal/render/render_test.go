package render_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/temirov/gitingest/internal/render"
	"github.com/temirov/gitingest/internal/types"
)

// sampleResult assembles a small fixed result for rendering assertions.
func sampleResult() *types.IngestResult {
	return &types.IngestResult{
		RepoURL:      "https://github.com/acme/widgets",
		ShortRepoURL: "acme/widgets",
		Tree:         "widgets/\n└── main.go\n",
		Content:      "main.go:\n" + strings.Repeat("=", 48) + "\npackage main\n\n",
		Summary: types.Summary{
			FileCount:  1,
			TotalBytes: 13,
			TotalLines: 1,
		},
	}
}

// TestTreeText verifies the glyph layout and node annotations.
func TestTreeText(testingInstance *testing.T) {
	rootNode := &types.TreeNode{
		Name: "repo", RelativePath: ".", Kind: types.NodeKindDirectory, Status: types.NodeStatusIncluded,
		Children: []*types.TreeNode{
			{
				Name: "docs", RelativePath: "docs", Kind: types.NodeKindDirectory, Status: types.NodeStatusIncluded,
				Children: []*types.TreeNode{
					{Name: "guide.md", RelativePath: "docs/guide.md", Kind: types.NodeKindFile, Status: types.NodeStatusIncluded},
				},
			},
			{Name: "huge.bin", RelativePath: "huge.bin", Kind: types.NodeKindFile, Status: types.NodeStatusExcluded, Note: types.NoteTooLarge},
			{Name: "main.go", RelativePath: "main.go", Kind: types.NodeKindFile, Status: types.NodeStatusIncluded},
		},
	}

	expectedTree := "repo/\n" +
		"├── docs/\n" +
		"│   └── guide.md\n" +
		"├── huge.bin (skipped: too large)\n" +
		"└── main.go\n"
	actualTree := render.TreeText(rootNode)
	if actualTree != expectedTree {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedTree, actualTree)
	}
}

// TestRenderText verifies the plain text section layout.
func TestRenderText(testingInstance *testing.T) {
	rendered, renderError := render.Render(sampleResult(), types.FormatText)
	if renderError != nil {
		testingInstance.Fatalf("unexpected error: %v", renderError)
	}
	for _, expectedFragment := range []string{
		"Repository: acme/widgets",
		"Files analyzed: 1",
		"Total size: 13 B",
		"Total lines: 1",
		"Directory structure:",
		"└── main.go",
		"package main",
	} {
		if !strings.Contains(rendered, expectedFragment) {
			testingInstance.Errorf("expected text output to contain %q", expectedFragment)
		}
	}
	if strings.Contains(rendered, "Estimated tokens") {
		testingInstance.Errorf("expected no token line without an estimate")
	}
}

// TestRenderTextTruncationLine verifies the truncation marker in summaries.
func TestRenderTextTruncationLine(testingInstance *testing.T) {
	result := sampleResult()
	result.Summary.Truncated = true
	result.Summary.EstimatedTokens = 7

	rendered, renderError := render.Render(result, types.FormatText)
	if renderError != nil {
		testingInstance.Fatalf("unexpected error: %v", renderError)
	}
	if !strings.Contains(rendered, "Results truncated by budget limits") {
		testingInstance.Errorf("expected truncation line in summary")
	}
	if !strings.Contains(rendered, "Estimated tokens: 7") {
		testingInstance.Errorf("expected estimated token line in summary")
	}
}

// TestRenderJSON verifies that JSON output round-trips the result record.
func TestRenderJSON(testingInstance *testing.T) {
	rendered, renderError := render.Render(sampleResult(), types.FormatJSON)
	if renderError != nil {
		testingInstance.Fatalf("unexpected error: %v", renderError)
	}

	var decoded types.IngestResult
	if decodeError := json.Unmarshal([]byte(rendered), &decoded); decodeError != nil {
		testingInstance.Fatalf("failed to decode JSON output: %v", decodeError)
	}
	if decoded.ShortRepoURL != "acme/widgets" {
		testingInstance.Errorf("expected short repo URL to survive encoding, got %q", decoded.ShortRepoURL)
	}
	if decoded.Summary.FileCount != 1 {
		testingInstance.Errorf("expected file count 1, got %d", decoded.Summary.FileCount)
	}
	if decoded.Content == "" {
		testingInstance.Errorf("expected content to survive encoding")
	}
}

// TestRenderMarkdown verifies heading-delimited markdown sections.
func TestRenderMarkdown(testingInstance *testing.T) {
	rendered, renderError := render.Render(sampleResult(), types.FormatMarkdown)
	if renderError != nil {
		testingInstance.Fatalf("unexpected error: %v", renderError)
	}
	for _, expectedFragment := range []string{
		"# acme/widgets",
		"## Summary",
		"## Directory structure",
		"## Files",
		"```",
	} {
		if !strings.Contains(rendered, expectedFragment) {
			testingInstance.Errorf("expected markdown output to contain %q", expectedFragment)
		}
	}
}

// TestRenderMarkdownFenceGrowsPastEmbeddedFences verifies that content
// containing triple backticks stays inside its preformatted block.
func TestRenderMarkdownFenceGrowsPastEmbeddedFences(testingInstance *testing.T) {
	result := sampleResult()
	result.Content = "README.md:\n" + strings.Repeat("=", 48) + "\n```go\npackage main\n```\n\n"

	rendered, renderError := render.Render(result, types.FormatMarkdown)
	if renderError != nil {
		testingInstance.Fatalf("unexpected error: %v", renderError)
	}
	if !strings.Contains(rendered, "````\n"+result.Content+"````") {
		testingInstance.Errorf("expected a four-backtick fence around content with embedded fences, got:\n%s", rendered)
	}
}

// TestRenderUnsupportedFormat verifies format validation.
func TestRenderUnsupportedFormat(testingInstance *testing.T) {
	_, renderError := render.Render(sampleResult(), "yaml")
	if renderError == nil {
		testingInstance.Fatalf("expected error for unsupported format")
	}
	if !strings.Contains(renderError.Error(), "yaml") {
		testingInstance.Errorf("expected error to name the offending format, got %v", renderError)
	}
}
