// Package source normalizes ingestion input strings into Source descriptors.
package source

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/temirov/gitingest/internal/types"
)

const (
	httpsScheme    = "https"
	httpScheme     = "http"
	gitSuffix      = ".git"
	treePathMarker = "tree"
	blobPathMarker = "blob"

	defaultHost = "github.com"
)

// DefaultAllowedHosts lists the repository hosts recognized when no explicit
// allow-list is configured.
var DefaultAllowedHosts = []string{"github.com", "gitlab.com", "bitbucket.org"}

// shorthandExpression matches owner/repo references that expand to the default host.
var shorthandExpression = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)

// InvalidSourceError reports an input string that is neither a reachable
// local path nor a well-formed remote repository reference.
type InvalidSourceError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (invalidSource *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source %q: %s", invalidSource.Input, invalidSource.Reason)
}

// Resolve normalizes input into a Source descriptor. Local filesystem paths
// take priority over remote interpretations; the only side effect is a
// read-only existence check. An explicit branch overrides any branch encoded
// in the input URL. The token is attached to remote sources and never
// embedded in the URL.
func Resolve(input string, branch string, token string, allowedHosts []string) (types.Source, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return types.Source{}, &InvalidSourceError{Input: input, Reason: "empty input"}
	}

	if fileInformation, statError := os.Stat(trimmedInput); statError == nil {
		if !fileInformation.IsDir() {
			return types.Source{}, &InvalidSourceError{Input: input, Reason: "local path is not a directory"}
		}
		absolutePath, absoluteError := filepath.Abs(trimmedInput)
		if absoluteError != nil {
			return types.Source{}, fmt.Errorf("resolving absolute path for %s: %w", trimmedInput, absoluteError)
		}
		return types.Source{Kind: types.SourceKindLocal, Path: absolutePath}, nil
	}

	remoteSource, resolveError := resolveRemote(trimmedInput, allowedHosts)
	if resolveError != nil {
		return types.Source{}, resolveError
	}
	if branch != "" {
		remoteSource.Branch = branch
	}
	remoteSource.Token = token
	return remoteSource, nil
}

// resolveRemote interprets input as a remote repository reference: a full
// URL, an owner/repo shorthand, or a bare host/owner/repo path.
func resolveRemote(input string, allowedHosts []string) (types.Source, error) {
	if matches := shorthandExpression.FindStringSubmatch(input); matches != nil {
		return buildRemoteSource(defaultHost, matches[1], matches[2], "", "", allowedHosts, input)
	}

	candidate := input
	if !strings.Contains(candidate, "://") {
		candidate = httpsScheme + "://" + candidate
	}
	parsedURL, parseError := url.Parse(candidate)
	if parseError != nil || parsedURL.Host == "" {
		return types.Source{}, &InvalidSourceError{Input: input, Reason: "not a local path or recognizable repository URL"}
	}
	if parsedURL.Scheme != httpsScheme && parsedURL.Scheme != httpScheme {
		return types.Source{}, &InvalidSourceError{Input: input, Reason: fmt.Sprintf("unsupported scheme %q", parsedURL.Scheme)}
	}
	if parsedURL.User != nil {
		return types.Source{}, &InvalidSourceError{Input: input, Reason: "credentials embedded in URL are not accepted"}
	}

	pathSegments := splitPathSegments(parsedURL.Path)
	if len(pathSegments) < 2 {
		return types.Source{}, &InvalidSourceError{Input: input, Reason: "URL must contain owner and repository name"}
	}

	owner := pathSegments[0]
	repositoryName := strings.TrimSuffix(pathSegments[1], gitSuffix)

	branch := ""
	subpath := ""
	if len(pathSegments) > 3 && (pathSegments[2] == treePathMarker || pathSegments[2] == blobPathMarker) {
		branch = pathSegments[3]
		if len(pathSegments) > 4 {
			subpath = strings.Join(pathSegments[4:], "/")
		}
	}

	return buildRemoteSource(parsedURL.Host, owner, repositoryName, branch, subpath, allowedHosts, input)
}

// buildRemoteSource assembles the Remote variant after host validation.
func buildRemoteSource(host string, owner string, name string, branch string, subpath string, allowedHosts []string, input string) (types.Source, error) {
	if !hostAllowed(host, allowedHosts) {
		return types.Source{}, &InvalidSourceError{Input: input, Reason: fmt.Sprintf("host %q is not a recognized repository host", host)}
	}
	return types.Source{
		Kind:    types.SourceKindRemote,
		URL:     fmt.Sprintf("https://%s/%s/%s", host, owner, name),
		Host:    host,
		Owner:   owner,
		Name:    name,
		Branch:  branch,
		Subpath: subpath,
	}, nil
}

// hostAllowed reports whether host appears in the allow-list, falling back to
// DefaultAllowedHosts when the list is empty.
func hostAllowed(host string, allowedHosts []string) bool {
	hosts := allowedHosts
	if len(hosts) == 0 {
		hosts = DefaultAllowedHosts
	}
	normalizedHost := strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, allowedHost := range hosts {
		if normalizedHost == strings.ToLower(strings.TrimSpace(allowedHost)) {
			return true
		}
	}
	return false
}

// splitPathSegments returns the non-empty segments of a URL path.
func splitPathSegments(urlPath string) []string {
	var segments []string
	for _, segment := range strings.Split(urlPath, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
