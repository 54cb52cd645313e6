// Package traverse walks a resolved repository root depth-first under
// pattern and budget constraints, producing ordered file entries and an
// annotated tree skeleton.
package traverse

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitingest/internal/pattern"
	"github.com/temirov/gitingest/internal/types"
	"github.com/temirov/gitingest/internal/utils"
)

// Result carries the outcome of one traversal.
type Result struct {
	// Entries lists accepted files in lexicographic pre-order.
	Entries []types.FileEntry
	// Tree is the annotated directory skeleton rooted at the walked directory.
	Tree *types.TreeNode
	// Truncated reports that the file-count budget halted the walk early.
	Truncated bool
}

// walker holds the mutable state of a single walk.
type walker struct {
	canonicalRoot string
	matcher       *pattern.Matcher
	budget        types.Budget
	logger        *zap.Logger

	entries       []types.FileEntry
	acceptedCount int
	stopped       bool
	visitedDirs   map[string]struct{}
}

// Walk traverses root depth-first. Children are visited in lexicographic
// order for determinism. Excluded directories are never descended into and
// their contents count toward no budget. Files over the size budget stay in
// the tree annotated as skipped but never halt the walk; reaching the file
// count budget stops traversal entirely and marks the remaining siblings as
// not scanned. Symbolic links resolving outside the root, and directory
// cycles, are rejected. Unreadable directories are recorded and skipped.
// Cancellation via ctx aborts the walk with the context error.
func Walk(ctx context.Context, root string, matcher *pattern.Matcher, budget types.Budget, logger *zap.Logger) (Result, error) {
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return Result{}, absoluteError
	}
	canonicalRoot, canonicalError := filepath.EvalSymlinks(absoluteRoot)
	if canonicalError != nil {
		return Result{}, canonicalError
	}

	walkState := &walker{
		canonicalRoot: canonicalRoot,
		matcher:       matcher,
		budget:        budget,
		logger:        utils.EnsureLogger(logger),
		visitedDirs:   map[string]struct{}{canonicalRoot: {}},
	}

	rootNode := &types.TreeNode{
		Name:         filepath.Base(absoluteRoot),
		RelativePath: ".",
		Kind:         types.NodeKindDirectory,
		Status:       types.NodeStatusIncluded,
	}
	if walkError := walkState.walkDirectory(ctx, absoluteRoot, "", rootNode); walkError != nil {
		return Result{}, walkError
	}

	return Result{Entries: walkState.entries, Tree: rootNode, Truncated: walkState.stopped}, nil
}

// walkDirectory visits the children of one directory in sorted order and
// appends their nodes to parentNode.
func (walkState *walker) walkDirectory(ctx context.Context, directoryPath string, relativeDirectory string, parentNode *types.TreeNode) error {
	if contextError := ctx.Err(); contextError != nil {
		return contextError
	}

	directoryEntries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		walkState.logger.Warn("skipping unreadable directory",
			zap.String("path", directoryPath), zap.Error(readError))
		parentNode.Note = types.NoteUnreadable
		return nil
	}
	sort.Slice(directoryEntries, func(left, right int) bool {
		return directoryEntries[left].Name() < directoryEntries[right].Name()
	})

	for _, directoryEntry := range directoryEntries {
		childRelativePath := path.Join(relativeDirectory, directoryEntry.Name())
		childAbsolutePath := filepath.Join(directoryPath, directoryEntry.Name())

		if walkState.stopped {
			parentNode.Children = append(parentNode.Children, &types.TreeNode{
				Name:         directoryEntry.Name(),
				RelativePath: childRelativePath,
				Kind:         nodeKind(directoryEntry.IsDir()),
				Status:       types.NodeStatusTruncated,
				Note:         types.NoteNotScanned,
			})
			continue
		}

		isDirectory := directoryEntry.IsDir()
		if directoryEntry.Type()&os.ModeSymlink != 0 {
			resolvedTarget, resolveError := filepath.EvalSymlinks(childAbsolutePath)
			if resolveError != nil {
				walkState.logger.Warn("skipping broken symlink",
					zap.String("path", childAbsolutePath), zap.Error(resolveError))
				continue
			}
			targetInformation, targetStatError := os.Stat(childAbsolutePath)
			if targetStatError != nil {
				walkState.logger.Warn("unable to stat symlink target",
					zap.String("path", childAbsolutePath), zap.Error(targetStatError))
				continue
			}
			if walkState.escapesRoot(resolvedTarget) {
				parentNode.Children = append(parentNode.Children, &types.TreeNode{
					Name:         directoryEntry.Name(),
					RelativePath: childRelativePath,
					Kind:         nodeKind(targetInformation.IsDir()),
					Status:       types.NodeStatusExcluded,
					Note:         types.NoteOutsideRoot,
				})
				continue
			}
			isDirectory = targetInformation.IsDir()
			if isDirectory && walkState.alreadyVisited(resolvedTarget) {
				continue
			}
		}

		if walkState.matcher.Decide(childRelativePath, isDirectory) == pattern.Exclude {
			continue
		}

		if isDirectory {
			childNode := &types.TreeNode{
				Name:         directoryEntry.Name(),
				RelativePath: childRelativePath,
				Kind:         types.NodeKindDirectory,
				Status:       types.NodeStatusIncluded,
			}
			parentNode.Children = append(parentNode.Children, childNode)
			if walkError := walkState.walkDirectory(ctx, childAbsolutePath, childRelativePath, childNode); walkError != nil {
				return walkError
			}
			continue
		}

		entryInformation, informationError := directoryEntry.Info()
		if informationError != nil {
			entryInformation, informationError = os.Stat(childAbsolutePath)
		}
		if informationError != nil {
			walkState.logger.Warn("unable to stat file",
				zap.String("path", childAbsolutePath), zap.Error(informationError))
			parentNode.Children = append(parentNode.Children, &types.TreeNode{
				Name:         directoryEntry.Name(),
				RelativePath: childRelativePath,
				Kind:         types.NodeKindFile,
				Status:       types.NodeStatusExcluded,
				Note:         types.NoteUnreadable,
			})
			continue
		}

		fileSize := entryInformation.Size()
		if walkState.budget.MaxFileSize != nil && fileSize > *walkState.budget.MaxFileSize {
			parentNode.Children = append(parentNode.Children, &types.TreeNode{
				Name:         directoryEntry.Name(),
				RelativePath: childRelativePath,
				Kind:         types.NodeKindFile,
				Status:       types.NodeStatusExcluded,
				Note:         types.NoteTooLarge,
				SizeBytes:    fileSize,
			})
			continue
		}

		if walkState.budget.MaxFiles != nil && walkState.acceptedCount >= *walkState.budget.MaxFiles {
			walkState.stopped = true
			parentNode.Children = append(parentNode.Children, &types.TreeNode{
				Name:         directoryEntry.Name(),
				RelativePath: childRelativePath,
				Kind:         types.NodeKindFile,
				Status:       types.NodeStatusTruncated,
				Note:         types.NoteNotScanned,
			})
			continue
		}

		isBinary, sniffError := utils.SniffBinary(childAbsolutePath)
		if sniffError != nil {
			walkState.logger.Warn("unable to sniff file content",
				zap.String("path", childAbsolutePath), zap.Error(sniffError))
			parentNode.Children = append(parentNode.Children, &types.TreeNode{
				Name:         directoryEntry.Name(),
				RelativePath: childRelativePath,
				Kind:         types.NodeKindFile,
				Status:       types.NodeStatusExcluded,
				Note:         types.NoteUnreadable,
			})
			continue
		}

		walkState.acceptedCount++
		walkState.entries = append(walkState.entries, types.FileEntry{
			RelativePath: childRelativePath,
			AbsolutePath: childAbsolutePath,
			SizeBytes:    fileSize,
			IsBinary:     isBinary,
			IsIncluded:   true,
		})
		parentNode.Children = append(parentNode.Children, &types.TreeNode{
			Name:         directoryEntry.Name(),
			RelativePath: childRelativePath,
			Kind:         types.NodeKindFile,
			Status:       types.NodeStatusIncluded,
			SizeBytes:    fileSize,
		})
	}

	return nil
}

// nodeKind maps the directory flag onto the tree node kind constants.
func nodeKind(isDirectory bool) string {
	if isDirectory {
		return types.NodeKindDirectory
	}
	return types.NodeKindFile
}

// escapesRoot reports whether a canonical path lies outside the traversal root.
func (walkState *walker) escapesRoot(canonicalPath string) bool {
	rootWithSeparator := walkState.canonicalRoot + string(filepath.Separator)
	return canonicalPath != walkState.canonicalRoot && !strings.HasPrefix(canonicalPath, rootWithSeparator)
}

// alreadyVisited records resolved directory targets and reports cycles.
func (walkState *walker) alreadyVisited(canonicalDirectory string) bool {
	if _, visited := walkState.visitedDirs[canonicalDirectory]; visited {
		return true
	}
	walkState.visitedDirs[canonicalDirectory] = struct{}{}
	return false
}
