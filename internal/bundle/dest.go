package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshua-decoder/run-bundler/internal/configline"
)

const (
	ConfigName   = "joshua.config"
	LauncherName = "run-joshua.sh"
)

const launcherTemplate = `#!/bin/bash
# Usage: bundle_destdir/` + LauncherName + ` [extra joshua config options]

bundledir=$(dirname $0)
cd $bundledir   # relative paths are now safe....
$JOSHUA/joshua-decoder -c ` + ConfigName + ` $*
`

// prepareDest creates dir. An existing dir is an error unless force is set,
// in which case it is removed with everything under it first.
func prepareDest(dir string, force bool) error {
	err := os.Mkdir(dir, 0755)
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return err
	}
	if !force {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dir)
	}
	err = os.RemoveAll(dir)
	if err != nil {
		return err
	}
	return os.Mkdir(dir, 0755)
}

func writeConfig(dir string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(filepath.Join(dir, ConfigName), []byte(b.String()), 0644)
}

func writeLauncher(dir string) error {
	path := filepath.Join(dir, LauncherName)
	err := os.WriteFile(path, []byte(launcherTemplate), 0755)
	if err != nil {
		return err
	}
	// WriteFile's mode is subject to umask.
	return os.Chmod(path, 0555)
}

// names tracks which source owns each flat name in the bundle.
type names map[string]string

func newNames() names {
	return names{ConfigName: "", LauncherName: ""}
}

// claim registers name for t's source. It reports whether the name was
// already taken by the same source, in which case the resource is in place.
// Sources are compared in absolute form, since a resolved source may still
// be relative.
func (n names) claim(t configline.Transform) (taken bool, err error) {
	name := t.Name()
	source := absPath(t.Source)
	first, ok := n[name]
	if !ok {
		n[name] = source
		return false, nil
	}
	if first == "" || first != source {
		return false, &CollisionError{Name: name, First: first, Second: source}
	}
	return true, nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
