// executor_test exercises the real subprocess runner against small
// host binaries (echo, sleep, ls) to confirm that output capture, exit
// codes, timeouts and launch failures are all reported via the Result
// rather than via panics or errors.
package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/hbomb79/Siphon/internal/executor"
	"github.com/labstack/gommon/random"
	"github.com/stretchr/testify/assert"
)

func TestRun_CapturesOutputAndExitCode(t *testing.T) {
	t.Parallel()

	result := executor.New().Run(context.Background(), executor.Command{
		Program: "echo",
		Args:    []string{"hello", "world"},
		Timeout: time.Second * 5,
	})

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello world\n", string(result.Output))
	assert.Empty(t, result.ErrOutput)
	assert.False(t, result.TimedOut)
	assert.False(t, result.FailedToStart)
}

func TestRun_ArgumentsAreNotShellInterpreted(t *testing.T) {
	t.Parallel()

	// A metacharacter-laden argument must arrive at the program as an
	// opaque string rather than spawning anything.
	hostile := "; echo injected > /tmp/" + random.String(12)
	result := executor.New().Run(context.Background(), executor.Command{
		Program: "echo",
		Args:    []string{hostile},
		Timeout: time.Second * 5,
	})

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, hostile+"\n", string(result.Output))
}

func TestRun_NonZeroExitCapturesStderr(t *testing.T) {
	t.Parallel()

	result := executor.New().Run(context.Background(), executor.Command{
		Program: "ls",
		Args:    []string{"/siphon-no-such-path-" + random.String(8)},
		Timeout: time.Second * 5,
	})

	assert.NotEqual(t, 0, result.ExitCode)
	assert.NotEmpty(t, result.ErrOutput)
	assert.False(t, result.TimedOut)
	assert.False(t, result.FailedToStart)
}

func TestRun_TimeoutKillsProcess(t *testing.T) {
	t.Parallel()

	start := time.Now()
	result := executor.New().Run(context.Background(), executor.Command{
		Program: "sleep",
		Args:    []string{"30"},
		Timeout: time.Millisecond * 200,
	})

	assert.True(t, result.TimedOut)
	assert.False(t, result.FailedToStart)
	assert.Equal(t, -1, result.ExitCode)
	assert.Less(t, time.Since(start), time.Second*5, "process should have been killed promptly, not waited out")
}

func TestRun_ParentContextCancellationKillsProcess(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond * 100)
		cancel()
	}()

	result := executor.New().Run(ctx, executor.Command{
		Program: "sleep",
		Args:    []string{"30"},
		Timeout: time.Minute,
	})

	assert.False(t, result.TimedOut, "cancellation is not a timeout")
	assert.Equal(t, -1, result.ExitCode)
}

func TestRun_MissingProgramFailsToStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary string
		program string
	}{
		{"unknown binary", "siphon-no-such-binary-" + random.String(10)},
		{"empty program", ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.summary, func(t *testing.T) {
			t.Parallel()

			result := executor.New().Run(context.Background(), executor.Command{
				Program: test.program,
				Timeout: time.Second,
			})

			assert.True(t, result.FailedToStart)
			assert.False(t, result.TimedOut)
			assert.Equal(t, -1, result.ExitCode)
			assert.NotEmpty(t, result.ErrOutput, "launch error should be reported via ErrOutput")
		})
	}
}
