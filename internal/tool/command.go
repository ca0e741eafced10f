// Package tool runs the decoder's helper programs: the configuration option
// filter, the language model binarizer and the grammar packer.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
)

// ExitError reports an external program that could not be started or
// exited with a non-zero status. Code is 0 when it never ran.
type ExitError struct {
	Tool string
	Argv []string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: exited with status %d", e.Tool, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Split breaks command into arguments with shell quoting rules, then
// expands environment references inside each argument. An expanded value
// never introduces new argument boundaries. Backticks are left alone;
// nothing is run.
func Split(command string) ([]string, error) {
	parser := shellwords.NewParser()
	parser.ParseBacktick = false
	parser.ParseEnv = false
	argv, err := parser.Parse(command)
	if err != nil {
		return nil, err
	}
	for i := range argv {
		argv[i] = os.ExpandEnv(argv[i])
	}
	return argv, nil
}

// Command is an external program plus its fixed leading arguments.
type Command struct {
	name string
	argv []string
	log  *zap.Logger

	// Stdout and Stderr receive the program's output. Output only uses Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommand parses command, e.g. `$JOSHUA/build_binary -s`, into a Command.
func NewCommand(command string, log *zap.Logger) (*Command, error) {
	argv, err := Split(command)
	if err != nil {
		return nil, fmt.Errorf("tool: %s: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("tool: empty command")
	}
	for i := range argv {
		argv[i], err = homedir.Expand(argv[i])
		if err != nil {
			return nil, fmt.Errorf("tool: %s: %w", command, err)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Command{
		name:   filepath.Base(argv[0]),
		argv:   argv,
		log:    log,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

func (c *Command) Name() string { return c.name }

// Path is the program that will be executed.
func (c *Command) Path() string { return c.argv[0] }

// Found reports whether the program exists and is executable, looking it up
// in $PATH when it has no directory part.
func (c *Command) Found() bool {
	_, err := exec.LookPath(c.Path())
	return err == nil
}

func (c *Command) args(extra []string) []string {
	argv := make([]string, 0, len(c.argv)+len(extra))
	argv = append(argv, c.argv...)
	return append(argv, extra...)
}

// Run executes the program with args appended and waits for it.
func (c *Command) Run(ctx context.Context, args ...string) error {
	argv := c.args(args)
	c.log.Info("Running tool", zap.String("tool", c.name), zap.Strings("argv", argv))

	cmd := c.command(ctx, argv)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return c.wrap(ctx, argv, cmd.Run())
}

// Output executes the program with args appended, feeding it stdin, and
// returns what it wrote to standard output.
func (c *Command) Output(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	argv := c.args(args)
	c.log.Info("Running tool", zap.String("tool", c.name), zap.Strings("argv", argv))

	var stdout bytes.Buffer
	cmd := c.command(ctx, argv)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = c.Stderr
	err := c.wrap(ctx, argv, cmd.Run())
	if err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// WaitDelay bounds how long a killed program's children may keep its
// output pipes open.
var WaitDelay = 5 * time.Second

// command kills the program when ctx is done and waits for it to go
// away before returning.
func (c *Command) command(ctx context.Context, argv []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = WaitDelay
	return cmd
}

func (c *Command) wrap(ctx context.Context, argv []string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.log.Warn("Tool stopped", zap.String("tool", c.name), zap.Error(ctxErr))
		return fmt.Errorf("%s: %w", c.name, ctxErr)
	}
	e := &ExitError{Tool: c.name, Argv: argv, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.Code = exitErr.ExitCode()
	}
	c.log.Error("Tool failed", zap.String("tool", c.name), zap.Int("code", e.Code), zap.Error(err))
	return e
}
