package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("Executor")

type (
	// Command describes a single invocation of an external program. The
	// argument vector is handed to the OS verbatim; no shell is ever
	// involved, so argument values cannot be interpreted as commands.
	Command struct {
		Program string
		Args    []string
		Timeout time.Duration
	}

	// Result captures everything about a finished invocation. A Result is
	// always produced, regardless of how badly the invocation went; the
	// flags below encode the failure modes.
	Result struct {
		Output    []byte
		ErrOutput []byte

		// ExitCode is the status the process exited with, or -1 if the
		// process was killed or never produced one.
		ExitCode int

		// TimedOut is set when the command's timeout elapsed and the
		// process was killed as a result.
		TimedOut bool

		// FailedToStart is set when the program could not be launched at
		// all (e.g., not present on PATH). ErrOutput holds the launch
		// error in that case.
		FailedToStart bool
	}

	// Executor runs external commands. It exists as an interface so that
	// consumers can substitute a spy/stub during testing.
	Executor interface {
		Run(ctx context.Context, cmd Command) Result
	}

	executor struct{}
)

func New() Executor {
	return &executor{}
}

// Run executes the command and reports the outcome through the returned
// Result. It never panics and never returns an error; inspect the Result
// flags to distinguish success, non-zero exit, timeout and launch failure.
func (e *executor) Run(ctx context.Context, cmd Command) Result {
	if cmd.Program == "" {
		return Result{ExitCode: -1, FailedToStart: true, ErrOutput: []byte("no program specified")}
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	log.Debugf("Running '%s' with %d args (timeout %s)\n", cmd.Program, len(cmd.Args), cmd.Timeout)

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(runCtx, cmd.Program, cmd.Args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	result := Result{Output: stdout.Bytes(), ErrOutput: stderr.Bytes(), ExitCode: 0}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		default:
			// Run returned before the process ever started.
			result.ExitCode = -1
			result.FailedToStart = true
			if len(result.ErrOutput) == 0 {
				result.ErrOutput = []byte(err.Error())
			}
		}
	}

	if err != nil && !result.FailedToStart && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		log.Warnf("Command '%s' exceeded its %s timeout and was killed\n", cmd.Program, cmd.Timeout)
	}

	return result
}
