package tools_test

import (
	"context"
	"sync"
	"testing"

	"github.com/hbomb79/Siphon/internal/executor"
	"github.com/hbomb79/Siphon/internal/tools"
	"github.com/stretchr/testify/assert"
)

// spyExecutor records every command it is asked to run and answers from
// a per-program table, defaulting to a clean exit with no output.
type spyExecutor struct {
	mutex    sync.Mutex
	commands []executor.Command
	results  map[string]executor.Result
}

func (spy *spyExecutor) Run(_ context.Context, cmd executor.Command) executor.Result {
	spy.mutex.Lock()
	defer spy.mutex.Unlock()

	spy.commands = append(spy.commands, cmd)
	if result, ok := spy.results[cmd.Program]; ok {
		return result
	}

	return executor.Result{ExitCode: 0}
}

func (spy *spyExecutor) recorded() []executor.Command {
	spy.mutex.Lock()
	defer spy.mutex.Unlock()

	return append([]executor.Command(nil), spy.commands...)
}

func newChecker(spy *spyExecutor) *tools.Checker {
	return tools.NewChecker(tools.CheckConfig{CheckTimeoutSeconds: 1}, spy)
}

func TestCheck_ReportsVersionForHealthyTool(t *testing.T) {
	t.Parallel()

	spy := &spyExecutor{results: map[string]executor.Result{
		"yt-dlp": {ExitCode: 0, Output: []byte("2024.08.06\n")},
	}}

	status := newChecker(spy).Check(context.Background(), tools.YtDlp)

	assert.True(t, status.Present)
	assert.Equal(t, "2024.08.06", status.Version)
}

func TestCheck_UsesCorrectVersionFlagPerTool(t *testing.T) {
	t.Parallel()

	spy := &spyExecutor{}
	checker := newChecker(spy)
	checker.Check(context.Background(), tools.Ffmpeg)
	checker.Check(context.Background(), tools.Ffprobe)
	checker.Check(context.Background(), tools.YtDlp)

	commands := spy.recorded()
	assert.Len(t, commands, 3)
	assert.Equal(t, []string{"-version"}, commands[0].Args)
	assert.Equal(t, []string{"-version"}, commands[1].Args)
	assert.Equal(t, []string{"--version"}, commands[2].Args)
}

func TestCheck_FailureModesReportNotPresent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary string
		result  executor.Result
	}{
		{"binary missing", executor.Result{ExitCode: -1, FailedToStart: true}},
		{"probe timed out", executor.Result{ExitCode: -1, TimedOut: true}},
		{"non-zero exit", executor.Result{ExitCode: 2, ErrOutput: []byte("borked install")}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.summary, func(t *testing.T) {
			t.Parallel()

			spy := &spyExecutor{results: map[string]executor.Result{"ffmpeg": test.result}}
			status := newChecker(spy).Check(context.Background(), tools.Ffmpeg)

			assert.False(t, status.Present)
			assert.Empty(t, status.Version)
		})
	}
}

func TestCheck_VersionFallsBackToStderr(t *testing.T) {
	t.Parallel()

	spy := &spyExecutor{results: map[string]executor.Result{
		"ffmpeg": {ExitCode: 0, ErrOutput: []byte("ffmpeg version 6.1.1\nbuilt with gcc\n")},
	}}

	status := newChecker(spy).Check(context.Background(), tools.Ffmpeg)

	assert.True(t, status.Present)
	assert.Equal(t, "ffmpeg version 6.1.1", status.Version)
}

func TestCheckAll_CoversEveryRequiredTool(t *testing.T) {
	t.Parallel()

	spy := &spyExecutor{}
	statuses := newChecker(spy).CheckAll(context.Background())

	assert.Len(t, statuses, len(tools.Required))
	for _, tool := range tools.Required {
		assert.Contains(t, statuses, tool)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary     string
		results     map[string]executor.Result
		expectedErr string
	}{
		{
			summary: "all tools healthy",
			results: map[string]executor.Result{},
		},
		{
			summary: "one tool missing",
			results: map[string]executor.Result{
				"ffprobe": {ExitCode: -1, FailedToStart: true},
			},
			expectedErr: "required tools missing or not runnable: ffprobe",
		},
		{
			summary: "multiple tools missing",
			results: map[string]executor.Result{
				"yt-dlp":  {ExitCode: -1, FailedToStart: true},
				"ffprobe": {ExitCode: -1, TimedOut: true},
			},
			expectedErr: "required tools missing or not runnable: yt-dlp, ffprobe",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.summary, func(t *testing.T) {
			t.Parallel()

			err := newChecker(&spyExecutor{results: test.results}).Verify(context.Background())
			if test.expectedErr == "" {
				assert.Nil(t, err)
			} else {
				assert.EqualError(t, err, test.expectedErr)
			}
		})
	}
}
