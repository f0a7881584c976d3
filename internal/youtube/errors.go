package youtube

import (
	"fmt"
	"strings"
	"time"

	"github.com/hbomb79/Siphon/internal/executor"
)

// Each failure class gets its own error type so callers (chiefly the API
// layer) can map failures to transport responses without string matching.
type (
	URLNotPermittedError struct{ reason string }
	ToolUnavailableError struct{ tool string }
	ToolTimeoutError     struct {
		tool    string
		timeout time.Duration
	}
	ToolFailureError struct {
		tool     string
		exitCode int
		detail   string
	}
	OutputParseError    struct{ reason string }
	ThumbnailFetchError struct {
		statusCode int
		reason     string
	}
)

func (err *URLNotPermittedError) Error() string {
	return fmt.Sprintf("URL validation failed: %s", err.reason)
}

func (err *ToolUnavailableError) Error() string {
	return fmt.Sprintf("tool '%s' could not be started; is it installed and on PATH?", err.tool)
}

func (err *ToolTimeoutError) Error() string {
	return fmt.Sprintf("tool '%s' did not complete within the allowed %s", err.tool, err.timeout)
}

func (err *ToolFailureError) Error() string {
	if err.detail == "" {
		return fmt.Sprintf("tool '%s' exited with status %d", err.tool, err.exitCode)
	}

	return fmt.Sprintf("tool '%s' exited with status %d: %s", err.tool, err.exitCode, err.detail)
}

func (err *OutputParseError) Error() string {
	return fmt.Sprintf("tool output could not be understood: %s", err.reason)
}

func (err *ThumbnailFetchError) Error() string {
	if err.statusCode != 0 {
		return fmt.Sprintf("thumbnail could not be fetched (HTTP %d): %s", err.statusCode, err.reason)
	}

	return fmt.Sprintf("thumbnail could not be fetched: %s", err.reason)
}

// classifyResult converts a failed executor result into the appropriate
// error for the tool that produced it; a nil return means the result
// was a clean exit.
func classifyResult(tool string, timeout time.Duration, result executor.Result) error {
	switch {
	case result.FailedToStart:
		return &ToolUnavailableError{tool: tool}
	case result.TimedOut:
		return &ToolTimeoutError{tool: tool, timeout: timeout}
	case result.ExitCode != 0:
		return &ToolFailureError{tool: tool, exitCode: result.ExitCode, detail: stderrTail(result.ErrOutput, 3)}
	}

	return nil
}

// stderrTail returns the last few non-empty lines of a stderr capture;
// tool error output tends to bury the useful message at the bottom.
func stderrTail(raw []byte, maxLines int) string {
	lines := make([]string, 0, maxLines)
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	return strings.Join(lines, " | ")
}
