package bundle

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joshua-decoder/run-bundler/internal/utils"
)

const generatedKind = "generated"

// ReportEntry is one top-level entry of a finished bundle.
type ReportEntry struct {
	Name   string
	Kind   string
	Source string
	Size   int64
}

// fillSizes measures each entry under dir. The bundle is complete at this
// point, so entries are measured concurrently.
func fillSizes(ctx context.Context, dir string, entries []ReportEntry) error {
	g, _ := errgroup.WithContext(ctx)
	for i := range entries {
		i := i
		g.Go(func() error {
			size, err := utils.DirSize(filepath.Join(dir, entries[i].Name))
			if err != nil {
				return err
			}
			entries[i].Size = size
			return nil
		})
	}
	return g.Wait()
}

var titleCaser = cases.Title(language.AmericanEnglish)

func RenderReport(w io.Writer, entries []ReportEntry) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"NAME", "KIND", "SOURCE", "SIZE"})
	var total int64
	for _, e := range entries {
		t.AppendRow(table.Row{e.Name, titleCaser.String(e.Kind), e.Source, units.BytesSize(float64(e.Size))})
		total += e.Size
	}
	t.AppendFooter(table.Row{"", "", "TOTAL", units.BytesSize(float64(total))})
	fmt.Fprintln(w, t.Render())
}
