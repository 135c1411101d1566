package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/memberguard/internal/redact"
)

// Environment variables inspected by this package.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	EnvTestDatabaseURL = "MEMBERGUARD_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// IsCI returns true if the current environment is a CI environment.
// It checks for common CI environment variables across different CI providers.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("Using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", redact.String(val),
				)
			}
			return val
		}
	}
	return defaultValue
}
