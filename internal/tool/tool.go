package tool

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/joshua-decoder/run-bundler/internal/config"
	"go.uber.org/zap"
)

// Set holds the three helper programs a bundle run may need.
type Set struct {
	CopyConfig    *Command
	BuildBinary   *Command
	GrammarPacker *Command
}

func FromConfig(c *config.Config, log *zap.Logger) (*Set, error) {
	var (
		s   = &Set{}
		err error
	)
	s.CopyConfig, err = NewCommand(c.Tools.CopyConfig, log)
	if err != nil {
		return nil, fmt.Errorf("tools.copy_config: %w", err)
	}
	s.BuildBinary, err = NewCommand(c.Tools.BuildBinary, log)
	if err != nil {
		return nil, fmt.Errorf("tools.build_binary: %w", err)
	}
	s.GrammarPacker, err = NewCommand(c.Tools.GrammarPacker, log)
	if err != nil {
		return nil, fmt.Errorf("tools.grammar_packer: %w", err)
	}
	return s, nil
}

// Commands lists the programs in the order copy-config, binarizer, packer.
func (s *Set) Commands() []*Command {
	return []*Command{s.CopyConfig, s.BuildBinary, s.GrammarPacker}
}

// SetOutput redirects what the programs print. The filter's standard
// output is always captured.
func (s *Set) SetOutput(stdout, stderr io.Writer) {
	for _, c := range s.Commands() {
		c.Stdout = stdout
		c.Stderr = stderr
	}
}

// Binarize writes the binary form of the language model src to dst.
func (s *Set) Binarize(ctx context.Context, src, dst string) error {
	return s.BuildBinary.Run(ctx, src, dst)
}

// Pack packs the grammar src into the directory dst.
func (s *Set) Pack(ctx context.Context, src, dst string) error {
	return s.GrammarPacker.Run(ctx, src, dst)
}

// Filter pipes lines through the copy-config program with options as its
// arguments and returns the lines it printed. options is split like a
// shell would split it, so a quoted value stays one argument.
func (s *Set) Filter(ctx context.Context, lines []string, options string) ([]string, error) {
	args, err := Split(options)
	if err != nil {
		return nil, fmt.Errorf("copy-config options: %w", err)
	}
	out, err := s.CopyConfig.Output(ctx, strings.NewReader(strings.Join(lines, "\n")), args...)
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// SplitLines splits b on line boundaries. A final line terminator does not
// produce an empty trailing line.
func SplitLines(b []byte) []string {
	lines := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	scanner.Buffer(make([]byte, 0, 64*1024), len(b)+1)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
