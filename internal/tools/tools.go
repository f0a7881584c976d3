// Package tools knows which external programs Siphon depends on and how
// to interrogate them for their availability and version. Checks are
// always live; nothing here caches a previous answer.
package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hbomb79/Siphon/internal/executor"
	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("Tools")

const (
	YtDlp   = "yt-dlp"
	Ffmpeg  = "ffmpeg"
	Ffprobe = "ffprobe"
)

// Required lists every tool that must be present for the service to
// function. Startup is aborted if any of these are missing.
var Required = []string{YtDlp, Ffmpeg, Ffprobe}

type (
	CheckConfig struct {
		// Seconds allowed for a single version probe before the tool is
		// declared missing. Kept short so health checks cannot stall.
		CheckTimeoutSeconds int `yaml:"check_timeout" env:"TOOL_CHECK_TIMEOUT" env-default:"5" validate:"gt=0"`
	}

	// Status reports the outcome of probing one tool.
	Status struct {
		Present bool   `json:"present"`
		Version string `json:"version"`
	}

	Checker struct {
		config   CheckConfig
		executor executor.Executor
	}
)

func NewChecker(config CheckConfig, exec executor.Executor) *Checker {
	return &Checker{config: config, executor: exec}
}

// Check probes a single tool by running its version command. Any failure
// to run the command (missing binary, timeout, non-zero exit) reports
// the tool as not present.
func (checker *Checker) Check(ctx context.Context, tool string) Status {
	result := checker.executor.Run(ctx, executor.Command{
		Program: tool,
		Args:    []string{versionFlag(tool)},
		Timeout: checker.config.CheckTimeout(),
	})

	if result.FailedToStart || result.TimedOut || result.ExitCode != 0 {
		log.Debugf("Tool '%s' unavailable (failedToStart=%v timedOut=%v exit=%d)\n",
			tool, result.FailedToStart, result.TimedOut, result.ExitCode)
		return Status{Present: false}
	}

	return Status{Present: true, Version: versionFromOutput(result)}
}

// CheckAll probes every required tool and returns the statuses keyed by
// tool name.
func (checker *Checker) CheckAll(ctx context.Context) map[string]Status {
	statuses := make(map[string]Status, len(Required))
	for _, tool := range Required {
		statuses[tool] = checker.Check(ctx, tool)
	}

	return statuses
}

// Verify confirms that every required tool is runnable, returning an
// error naming all the missing tools if any are absent. Intended for
// fail-fast use during startup, before the HTTP listener is opened.
func (checker *Checker) Verify(ctx context.Context) error {
	statuses := checker.CheckAll(ctx)
	missing := make([]string, 0)
	for _, tool := range Required {
		if !statuses[tool].Present {
			missing = append(missing, tool)
			continue
		}

		log.Infof("Found required tool '%s' (%s)\n", tool, statuses[tool].Version)
	}

	if len(missing) > 0 {
		return errors.New("required tools missing or not runnable: " + strings.Join(missing, ", "))
	}

	return nil
}

func (config CheckConfig) CheckTimeout() time.Duration {
	return time.Duration(config.CheckTimeoutSeconds) * time.Second
}

// ffmpeg-family binaries only understand the single-dash form.
func versionFlag(tool string) string {
	if tool == Ffmpeg || tool == Ffprobe {
		return "-version"
	}

	return "--version"
}

// versionFromOutput extracts the first line the tool printed when asked
// for its version, preferring stdout but falling back to stderr for
// tools which report there.
func versionFromOutput(result executor.Result) string {
	for _, raw := range [][]byte{result.Output, result.ErrOutput} {
		line, _, _ := strings.Cut(strings.TrimSpace(string(raw)), "\n")
		if line != "" {
			return strings.TrimSpace(line)
		}
	}

	return ""
}
