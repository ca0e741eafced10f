// Package bundle assembles a self-contained decoder run directory from a
// configuration file and the resources it references.
package bundle

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/joshua-decoder/run-bundler/internal/configline"
)

// Tools runs the external programs a bundle may need.
type Tools interface {
	configline.Tools
	// Filter rewrites the whole set of configuration lines according to
	// options. It may add or drop lines.
	Filter(ctx context.Context, lines []string, options string) ([]string, error)
}

type Result struct {
	// Lines are the lines written to the bundled configuration.
	Lines    []string
	Config   string
	Launcher string
	Entries  []ReportEntry
}

type Assembler struct {
	opts  Options
	tools Tools
	log   *zap.Logger

	state atomic.Int32
	lock  *flock.Flock
	names names
}

func New(opts Options, tools Tools, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		opts:  opts,
		tools: tools,
		log:   log,
		names: newNames(),
	}
}

func (a *Assembler) State() State { return State(a.state.Load()) }

func (a *Assembler) setState(s State) {
	a.state.Store(int32(s))
	a.log.Debug("State changed", zap.Stringer("state", s))
}

// LockFile is held for the duration of Run. It sits next to the
// destination, not inside it.
func (a *Assembler) LockFile() string {
	return filepath.Clean(a.opts.DestDir) + ".lock"
}

// Run builds the bundle. Resources are processed one line at a time in
// file order. On failure the destination is left as it is.
func (a *Assembler) Run(ctx context.Context) (result *Result, err error) {
	if a.State() != StateStart {
		return nil, ErrAlreadyRun
	}
	defer func() {
		if err != nil {
			a.setState(StateFailed)
		}
	}()

	err = a.acquireLock()
	if err != nil {
		return nil, err
	}

	lines, err := readLines(a.opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	err = prepareDest(a.opts.DestDir, a.opts.Force)
	if err != nil {
		return nil, err
	}
	a.setState(StateDestPrepared)

	if a.opts.CopyConfigOptions != "" {
		lines, err = a.tools.Filter(ctx, lines, a.opts.CopyConfigOptions)
		if err != nil {
			return nil, fmt.Errorf("filtering configuration: %w", err)
		}
		a.setState(StateLinesFiltered)
	}

	result = &Result{
		Config:   filepath.Join(a.opts.DestDir, ConfigName),
		Launcher: filepath.Join(a.opts.DestDir, LauncherName),
	}
	for i, raw := range lines {
		err = ctx.Err()
		if err != nil {
			return nil, err
		}
		line, entry, err := a.processLine(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		result.Lines = append(result.Lines, line)
		if entry != nil {
			result.Entries = append(result.Entries, *entry)
		}
	}
	a.setState(StateLinesProcessed)

	err = writeConfig(a.opts.DestDir, result.Lines)
	if err != nil {
		return nil, err
	}
	a.setState(StateConfigWritten)

	err = writeLauncher(a.opts.DestDir)
	if err != nil {
		return nil, err
	}
	a.setState(StateLauncherWritten)

	result.Entries = append(result.Entries,
		ReportEntry{Name: ConfigName, Kind: generatedKind, Source: a.opts.ConfigFile},
		ReportEntry{Name: LauncherName, Kind: generatedKind},
	)
	err = fillSizes(ctx, a.opts.DestDir, result.Entries)
	if err != nil {
		return nil, err
	}
	a.setState(StateDone)
	return result, nil
}

func (a *Assembler) processLine(ctx context.Context, raw string) (string, *ReportEntry, error) {
	t := configline.Plan(configline.Parse(strings.TrimSpace(raw)), a.opts.OrigDir, a.opts.DestDir)
	if t.Kind == configline.PassThrough {
		return t.Result(), nil, nil
	}

	taken, err := a.names.claim(t)
	if err != nil {
		return "", nil, err
	}
	if taken {
		a.log.Info("Resource already bundled", zap.String("name", t.Name()), zap.String("source", t.Source))
		return t.Result(), nil, nil
	}

	a.log.Info("Processing line",
		zap.Stringer("kind", t.Kind),
		zap.String("source", t.Source),
		zap.String("dest", t.Dest),
	)
	err = t.Process(ctx, a.tools)
	if err != nil {
		return "", nil, err
	}
	return t.Result(), &ReportEntry{Name: t.Name(), Kind: t.Kind.String(), Source: t.Source}, nil
}

func (a *Assembler) acquireLock() error {
	a.lock = flock.New(a.LockFile())
	locked, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", a.LockFile(), err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, a.LockFile())
	}
	return nil
}

// Close releases the destination lock and removes the lock file.
func (a *Assembler) Close() error {
	if a.lock == nil || !a.lock.Locked() {
		return nil
	}
	err := a.lock.Unlock()
	if err != nil {
		return err
	}
	err = os.Remove(a.LockFile())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	return lines, scanner.Err()
}
