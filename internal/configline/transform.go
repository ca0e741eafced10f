package configline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joshua-decoder/run-bundler/internal/utils"
)

// Tools runs the external programs behind Binarize and Pack.
type Tools interface {
	Binarize(ctx context.Context, src, dst string) error
	Pack(ctx context.Context, src, dst string) error
}

// Transform is the planned handling of one line. Source and Dest are
// absolute and empty for PassThrough.
type Transform struct {
	Kind   Kind
	Line   Line
	Source string
	Dest   string
}

// Plan classifies l and works out where its resource goes inside destDir.
func Plan(l Line, srcDir, destDir string) Transform {
	t := Transform{
		Kind: Classify(l, srcDir),
		Line: l,
	}
	if t.Kind == PassThrough {
		return t
	}

	token := l.FileToken()
	t.Source = Resolve(srcDir, token)

	name := filepath.Base(token)
	switch t.Kind {
	case Binarize:
		name = replaceExt(name, CompressedExt, BinarizedExt)
	case Pack:
		name = replaceExt(name, CompressedExt, PackedExt)
	}
	dest := filepath.Join(destDir, name)
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}
	t.Dest = dest
	return t
}

// Name is the flat name of the resource inside the bundle.
func (t Transform) Name() string {
	if t.Kind == PassThrough {
		return ""
	}
	return filepath.Base(t.Dest)
}

// Result renders the line as it must appear in the bundled configuration.
func (t Transform) Result() string {
	if t.Kind == PassThrough {
		return t.Line.String()
	}
	return t.Line.WithFileToken(t.Name()).String()
}

// Process performs the side effect of t.
func (t Transform) Process(ctx context.Context, tools Tools) error {
	h, ok := handlers[t.Kind]
	if !ok {
		return fmt.Errorf("configline: no handler for kind %d", t.Kind)
	}
	return h(ctx, t, tools)
}

type handler func(ctx context.Context, t Transform, tools Tools) error

var handlers = map[Kind]handler{
	PassThrough: func(context.Context, Transform, Tools) error { return nil },
	Copy: func(_ context.Context, t Transform, _ Tools) error {
		return utils.CopyPath(t.Source, t.Dest)
	},
	Binarize: func(ctx context.Context, t Transform, tools Tools) error {
		return tools.Binarize(ctx, t.Source, t.Dest)
	},
	Pack: func(ctx context.Context, t Transform, tools Tools) error {
		return tools.Pack(ctx, t.Source, t.Dest)
	},
}

func replaceExt(name, from, to string) string {
	return strings.TrimSuffix(name, from) + to
}
