package configline

import (
	"os"
	"strings"
)

// Kind selects how a configuration line is carried into the bundle.
type Kind int

const (
	// PassThrough lines are rendered unchanged and touch nothing on disk.
	PassThrough Kind = iota
	// Copy places the referenced file or directory tree in the bundle as is.
	Copy
	// Binarize turns a compressed language model into a binary one.
	Binarize
	// Pack turns a flat grammar file into a packed grammar directory.
	Pack
)

func (k Kind) String() string {
	switch k {
	case PassThrough:
		return "pass-through"
	case Copy:
		return "copy"
	case Binarize:
		return "binarize"
	case Pack:
		return "pack"
	default:
		return "<invalid kind>"
	}
}

const (
	CompressedExt = ".gz"
	BinarizedExt  = ".kenlm"
	PackedExt     = ".packed"
)

// Directives whose last token is a resource path.
var fileKeywords = map[string]struct{}{
	"lm":           {},
	"lmfile":       {},
	"tm":           {},
	"tmfile":       {},
	"weights-file": {},
}

func IsFileKeyword(keyword string) bool {
	_, ok := fileKeywords[keyword]
	return ok
}

// Classify decides the Kind of l, resolving its file token against srcDir.
// A translation model that is already a directory on disk is taken to be
// packed and is copied rather than packed again.
func Classify(l Line, srcDir string) Kind {
	keyword := l.Keyword()
	if !IsFileKeyword(keyword) {
		return PassThrough
	}
	source := Resolve(srcDir, l.FileToken())
	switch {
	case strings.HasPrefix(keyword, "lm") && strings.HasSuffix(source, CompressedExt):
		return Binarize
	case strings.HasPrefix(keyword, "tm") && !isDir(source):
		return Pack
	}
	return Copy
}

func isDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}
