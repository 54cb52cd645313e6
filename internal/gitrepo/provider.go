// Package gitrepo acquires read-only local roots for resolved sources,
// cloning remote repositories into ephemeral directories.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/temirov/gitingest/internal/types"
	"github.com/temirov/gitingest/internal/utils"
)

// Acquisition failure reasons surfaced through AcquisitionError.
const (
	ReasonNotFound     = "not_found"
	ReasonAuthFailed   = "auth_failed"
	ReasonTimeout      = "timeout"
	ReasonNetworkError = "network_error"
)

const (
	// DefaultCloneTimeout bounds a remote acquisition when no timeout is configured.
	DefaultCloneTimeout = 60 * time.Second

	// cloneTokenUsername is the placeholder user name sent with token authentication.
	cloneTokenUsername = "gitingest"

	ephemeralDirectoryPattern = "gitingest-*"
)

// AcquisitionError reports a failed remote acquisition. Any partial clone is
// already removed by the time the error is returned.
type AcquisitionError struct {
	Reason string
	URL    string
	Err    error
}

// Error implements the error interface.
func (acquisitionError *AcquisitionError) Error() string {
	return fmt.Sprintf("acquiring %s failed (%s): %v", acquisitionError.URL, acquisitionError.Reason, acquisitionError.Err)
}

// Unwrap exposes the underlying transport error.
func (acquisitionError *AcquisitionError) Unwrap() error {
	return acquisitionError.Err
}

// Provider yields a read-only local root directory for a resolved source.
// The returned release function must be called on every exit path; for
// remote sources it deletes the ephemeral clone directory.
type Provider interface {
	Acquire(ctx context.Context, source types.Source) (localRoot string, release func(), err error)
}

// CloneProvider acquires remote repositories through a shallow go-git clone
// and passes local paths through untouched.
type CloneProvider struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewCloneProvider constructs a CloneProvider with the given clone timeout.
// A non-positive timeout falls back to DefaultCloneTimeout.
func NewCloneProvider(timeout time.Duration, logger *zap.Logger) *CloneProvider {
	if timeout <= 0 {
		timeout = DefaultCloneTimeout
	}
	return &CloneProvider{Timeout: timeout, Logger: utils.EnsureLogger(logger)}
}

var noopRelease = func() {}

// Acquire returns the source path directly for local sources. For remote
// sources it performs a shallow single-branch clone of the requested branch
// (default branch when unspecified) into an ephemeral directory, deleted by
// the release function and on every failure path.
func (provider *CloneProvider) Acquire(ctx context.Context, source types.Source) (string, func(), error) {
	if source.Kind == types.SourceKindLocal {
		return source.Path, noopRelease, nil
	}

	ephemeralDirectory, tempError := os.MkdirTemp("", ephemeralDirectoryPattern)
	if tempError != nil {
		return "", noopRelease, fmt.Errorf("creating ephemeral clone directory: %w", tempError)
	}
	release := func() {
		if removeError := os.RemoveAll(ephemeralDirectory); removeError != nil {
			provider.Logger.Warn("failed to remove ephemeral clone directory",
				zap.String("directory", ephemeralDirectory), zap.Error(removeError))
		}
	}

	cloneContext, cancelClone := context.WithTimeout(ctx, provider.Timeout)
	defer cancelClone()

	cloneOptions := &git.CloneOptions{
		URL:          source.URL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if source.Branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(source.Branch)
	}
	if source.Token != "" {
		cloneOptions.Auth = &githttp.BasicAuth{Username: cloneTokenUsername, Password: source.Token}
	}

	provider.Logger.Info("cloning repository", zap.String("url", source.URL), zap.String("branch", source.Branch))
	_, cloneError := git.PlainCloneContext(cloneContext, ephemeralDirectory, false, cloneOptions)
	if cloneError != nil {
		release()
		return "", noopRelease, classifyCloneError(source.URL, cloneContext, cloneError)
	}

	return ephemeralDirectory, release, nil
}

// classifyCloneError maps go-git transport failures onto the acquisition
// error taxonomy.
func classifyCloneError(repositoryURL string, cloneContext context.Context, cloneError error) error {
	reason := ReasonNetworkError
	switch {
	case errors.Is(cloneError, transport.ErrAuthenticationRequired),
		errors.Is(cloneError, transport.ErrAuthorizationFailed):
		reason = ReasonAuthFailed
	case errors.Is(cloneError, transport.ErrRepositoryNotFound),
		errors.Is(cloneError, plumbing.ErrReferenceNotFound),
		isMissingRefSpec(cloneError):
		reason = ReasonNotFound
	case errors.Is(cloneError, context.DeadlineExceeded), errors.Is(cloneContext.Err(), context.DeadlineExceeded):
		reason = ReasonTimeout
	}
	return &AcquisitionError{Reason: reason, URL: repositoryURL, Err: cloneError}
}

// isMissingRefSpec reports whether the clone failed because the requested
// branch does not exist on the remote.
func isMissingRefSpec(cloneError error) bool {
	var missingRefSpec git.NoMatchingRefSpecError
	return errors.As(cloneError, &missingRefSpec)
}
