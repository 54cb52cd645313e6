package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/temirov/gitingest/internal/types"
)

// sampleRepositoryURL is the remote reference used in classification tests.
const sampleRepositoryURL = "https://github.com/acme/widgets"

// TestAcquireLocalPassthrough verifies that local sources skip cloning entirely.
func TestAcquireLocalPassthrough(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	provider := NewCloneProvider(0, nil)

	localRoot, release, acquireError := provider.Acquire(context.Background(), types.Source{
		Kind: types.SourceKindLocal,
		Path: temporaryRoot,
	})
	if acquireError != nil {
		testingInstance.Fatalf("unexpected error: %v", acquireError)
	}
	defer release()
	if localRoot != temporaryRoot {
		testingInstance.Errorf("expected passthrough path %s, got %s", temporaryRoot, localRoot)
	}
}

// TestNewCloneProviderTimeoutFallback verifies the default timeout.
func TestNewCloneProviderTimeoutFallback(testingInstance *testing.T) {
	provider := NewCloneProvider(0, nil)
	if provider.Timeout != DefaultCloneTimeout {
		testingInstance.Errorf("expected default timeout %s, got %s", DefaultCloneTimeout, provider.Timeout)
	}

	configuredProvider := NewCloneProvider(10*time.Second, nil)
	if configuredProvider.Timeout != 10*time.Second {
		testingInstance.Errorf("expected configured timeout, got %s", configuredProvider.Timeout)
	}
}

// TestAcquireFailureLeavesNoCloneDirectory verifies that a failed clone
// removes its ephemeral directory before returning.
func TestAcquireFailureLeavesNoCloneDirectory(testingInstance *testing.T) {
	scratchDirectory := testingInstance.TempDir()
	testingInstance.Setenv("TMPDIR", scratchDirectory)

	provider := NewCloneProvider(5*time.Second, nil)
	_, _, acquireError := provider.Acquire(context.Background(), types.Source{
		Kind: types.SourceKindRemote,
		URL:  filepath.Join(scratchDirectory, "missing.git"),
	})
	if acquireError == nil {
		testingInstance.Fatalf("expected clone failure for missing repository")
	}
	var acquisitionError *AcquisitionError
	if !errors.As(acquireError, &acquisitionError) {
		testingInstance.Fatalf("expected AcquisitionError, got %T", acquireError)
	}

	remaining, readError := os.ReadDir(scratchDirectory)
	if readError != nil {
		testingInstance.Fatalf("failed to inspect scratch directory: %v", readError)
	}
	for _, entry := range remaining {
		if strings.HasPrefix(entry.Name(), "gitingest-") {
			testingInstance.Errorf("expected ephemeral clone directory to be removed, found %s", entry.Name())
		}
	}
}

// TestClassifyCloneError verifies the mapping from transport failures onto
// acquisition reasons.
func TestClassifyCloneError(testingInstance *testing.T) {
	testCases := []struct {
		testName       string
		cloneError     error
		expectedReason string
	}{
		{
			testName:       "authentication required",
			cloneError:     transport.ErrAuthenticationRequired,
			expectedReason: ReasonAuthFailed,
		},
		{
			testName:       "authorization failed",
			cloneError:     transport.ErrAuthorizationFailed,
			expectedReason: ReasonAuthFailed,
		},
		{
			testName:       "repository not found",
			cloneError:     transport.ErrRepositoryNotFound,
			expectedReason: ReasonNotFound,
		},
		{
			testName:       "reference not found",
			cloneError:     plumbing.ErrReferenceNotFound,
			expectedReason: ReasonNotFound,
		},
		{
			testName:       "missing branch refspec",
			cloneError:     git.NoMatchingRefSpecError{},
			expectedReason: ReasonNotFound,
		},
		{
			testName:       "deadline exceeded",
			cloneError:     context.DeadlineExceeded,
			expectedReason: ReasonTimeout,
		},
		{
			testName:       "generic network failure",
			cloneError:     errors.New("connection reset"),
			expectedReason: ReasonNetworkError,
		},
	}
	for index, testCase := range testCases {
		classifiedError := classifyCloneError(sampleRepositoryURL, context.Background(), testCase.cloneError)
		var acquisitionError *AcquisitionError
		if !errors.As(classifiedError, &acquisitionError) {
			testingInstance.Errorf("case %d (%s): expected AcquisitionError, got %T", index, testCase.testName, classifiedError)
			continue
		}
		if acquisitionError.Reason != testCase.expectedReason {
			testingInstance.Errorf("case %d (%s): expected reason %s, got %s", index, testCase.testName, testCase.expectedReason, acquisitionError.Reason)
		}
		if acquisitionError.URL != sampleRepositoryURL {
			testingInstance.Errorf("case %d (%s): expected URL to be recorded", index, testCase.testName)
		}
		if !errors.Is(classifiedError, testCase.cloneError) {
			if _, isRefSpec := testCase.cloneError.(git.NoMatchingRefSpecError); !isRefSpec {
				testingInstance.Errorf("case %d (%s): expected underlying error to unwrap", index, testCase.testName)
			}
		}
	}
}
