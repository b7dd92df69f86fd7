// Package tui detects terminal and CI environments so output can adapt.
package tui

import (
	"os"

	"golang.org/x/term"
)

// ciEnvVars are set by common CI providers.
var ciEnvVars = []string{
	"CI",                     // Generic CI indicator
	"CONTINUOUS_INTEGRATION", // Generic CI indicator
	"GITHUB_ACTIONS",         // GitHub Actions
	"GITLAB_CI",              // GitLab CI
	"CIRCLECI",               // CircleCI
	"TRAVIS",                 // Travis CI
	"JENKINS_HOME",           // Jenkins
	"BUILDKITE",              // Buildkite
	"BITBUCKET_BUILD_NUMBER", // Bitbucket Pipelines
	"DRONE",                  // Drone CI
	"SEMAPHORE",              // Semaphore CI
	"APPVEYOR",               // AppVeyor
	"CODEBUILD_BUILD_ID",     // AWS CodeBuild
	"TF_BUILD",               // Azure Pipelines
}

// IsCI reports whether a CI environment variable is set.
func IsCI() bool {
	for _, env := range ciEnvVars {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return false
}

// IsTTY checks if stdout is a terminal.
func IsTTY() bool {
	return IsTerminal(os.Stdout)
}

// IsTerminal checks if f is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}
