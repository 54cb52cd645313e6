// Package config assembles engine settings from explicit values and process
// environment defaults. The engine itself never reads ambient state; callers
// construct Settings once at the boundary and pass them in.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment variable names recognized by FromEnvironment.
const (
	envMaxFileSize  = "GITINGEST_MAX_FILE_SIZE"
	envMaxFiles     = "GITINGEST_MAX_FILES"
	envCloneTimeout = "GITINGEST_CLONE_TIMEOUT"
	envAllowedHosts = "GITINGEST_ALLOWED_HOSTS"
	envWorkers      = "GITINGEST_WORKERS"
	envGithubToken  = "GITHUB_TOKEN"

	keyMaxFileSize  = "max_file_size"
	keyMaxFiles     = "max_files"
	keyCloneTimeout = "clone_timeout"
	keyAllowedHosts = "allowed_hosts"
	keyWorkers      = "workers"
	keyToken        = "token"
)

// Settings carries the default budgets, authentication, and tuning knobs for
// ingestion calls. Nil budget fields mean unbounded.
type Settings struct {
	MaxFileSize  *int64
	MaxFiles     *int
	Token        string
	CloneTimeout time.Duration
	AllowedHosts []string
	// DisableDefaultExcludes turns off the built-in exclusion pattern set.
	DisableDefaultExcludes bool
	// Workers bounds the aggregation read pool; zero selects the available
	// parallelism.
	Workers int
}

// FromEnvironment builds Settings from the recognized environment variables.
// Unset variables leave the corresponding fields at their zero values;
// explicit call arguments always override these defaults.
func FromEnvironment() (Settings, error) {
	environment := viper.New()
	bindings := map[string]string{
		keyMaxFileSize:  envMaxFileSize,
		keyMaxFiles:     envMaxFiles,
		keyCloneTimeout: envCloneTimeout,
		keyAllowedHosts: envAllowedHosts,
		keyWorkers:      envWorkers,
		keyToken:        envGithubToken,
	}
	for configurationKey, environmentVariable := range bindings {
		if bindError := environment.BindEnv(configurationKey, environmentVariable); bindError != nil {
			return Settings{}, fmt.Errorf("binding %s: %w", environmentVariable, bindError)
		}
	}

	settings := Settings{Token: environment.GetString(keyToken)}

	if environment.IsSet(keyMaxFileSize) {
		maxFileSize := environment.GetInt64(keyMaxFileSize)
		if maxFileSize < 0 {
			return Settings{}, fmt.Errorf("%s must not be negative", envMaxFileSize)
		}
		settings.MaxFileSize = &maxFileSize
	}
	if environment.IsSet(keyMaxFiles) {
		maxFiles := environment.GetInt(keyMaxFiles)
		if maxFiles < 0 {
			return Settings{}, fmt.Errorf("%s must not be negative", envMaxFiles)
		}
		settings.MaxFiles = &maxFiles
	}
	if environment.IsSet(keyCloneTimeout) {
		timeoutSeconds := environment.GetInt(keyCloneTimeout)
		if timeoutSeconds <= 0 {
			return Settings{}, fmt.Errorf("%s must be positive", envCloneTimeout)
		}
		settings.CloneTimeout = time.Duration(timeoutSeconds) * time.Second
	}
	if environment.IsSet(keyAllowedHosts) {
		settings.AllowedHosts = splitHostList(environment.GetString(keyAllowedHosts))
	}
	if environment.IsSet(keyWorkers) {
		workerCount := environment.GetInt(keyWorkers)
		if workerCount < 0 {
			return Settings{}, fmt.Errorf("%s must not be negative", envWorkers)
		}
		settings.Workers = workerCount
	}

	return settings, nil
}

// splitHostList parses a comma-separated host list.
func splitHostList(rawHosts string) []string {
	var hosts []string
	for _, host := range strings.Split(rawHosts, ",") {
		trimmedHost := strings.TrimSpace(host)
		if trimmedHost != "" {
			hosts = append(hosts, trimmedHost)
		}
	}
	return hosts
}
