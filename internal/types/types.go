// Package types defines the data structures shared across the gitingest engine.
package types

const (
	SourceKindLocal  = "local"
	SourceKindRemote = "remote"

	NodeKindFile      = "file"
	NodeKindDirectory = "directory"

	NodeStatusIncluded  = "included"
	NodeStatusExcluded  = "excluded"
	NodeStatusTruncated = "truncated"

	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Node annotations recorded for skipped entries so callers can inspect why a
// path is absent from the concatenated content.
const (
	NoteTooLarge    = "skipped: too large"
	NoteNotScanned  = "not scanned"
	NoteUnreadable  = "unreadable"
	NoteOutsideRoot = "outside root"
)

// Source describes a resolved ingestion input, either a local directory or a
// remote repository reference. Exactly one variant is populated, selected by
// Kind. URL never carries embedded credentials; Token travels separately.
type Source struct {
	Kind string

	// Local variant.
	Path string

	// Remote variant.
	URL     string
	Host    string
	Owner   string
	Name    string
	Branch  string
	Subpath string
	Token   string
}

// Short returns the compact identifier used in summaries: owner/name for
// remote sources and the directory path for local ones.
func (source Source) Short() string {
	if source.Kind == SourceKindRemote {
		return source.Owner + "/" + source.Name
	}
	return source.Path
}

// Budget bounds a single traversal. A nil field means unbounded. MaxFiles
// pointing at zero is a set value that admits no files at all.
type Budget struct {
	MaxFileSize *int64
	MaxFiles    *int
}

// FileEntry describes one accepted file discovered during traversal.
// Entries are immutable once created and ordered lexicographically.
type FileEntry struct {
	RelativePath string
	AbsolutePath string
	SizeBytes    int64
	IsBinary     bool
	IsIncluded   bool
}

// TreeNode mirrors the directory hierarchy of the traversed root. Children
// are ordered lexicographically. Status and Note annotate nodes that were
// excluded or left unscanned.
type TreeNode struct {
	Name         string      `json:"name"`
	RelativePath string      `json:"path"`
	Kind         string      `json:"kind"`
	Status       string      `json:"status"`
	Note         string      `json:"note,omitempty"`
	SizeBytes    int64       `json:"sizeBytes,omitempty"`
	Children     []*TreeNode `json:"children,omitempty"`
}

// Summary aggregates the counters of one ingestion call.
type Summary struct {
	FileCount       int   `json:"fileCount"`
	TotalBytes      int64 `json:"totalBytes"`
	TotalLines      int   `json:"totalLines"`
	EstimatedTokens int   `json:"estimatedTokens,omitempty"`
	Truncated       bool  `json:"truncated"`
}

// IngestResult is the immutable value produced by one ingestion call.
type IngestResult struct {
	RepoURL      string  `json:"repoUrl,omitempty"`
	ShortRepoURL string  `json:"shortRepoUrl"`
	Tree         string  `json:"tree"`
	Content      string  `json:"content"`
	Summary      Summary `json:"summary"`
}
