package configline

import (
	"path/filepath"
	"strings"
)

// Resolve anchors token at baseDir. Tokens starting with "/" or with
// baseDir are returned unchanged, anything else becomes the cleaned absolute
// form of baseDir/token. The filesystem is not consulted.
//
// Known defect: the baseDir test is a plain string prefix, not a path
// element match. With baseDir "runs/5" the token "runs/50/lm.gz" counts as
// already anchored and comes back relative.
func Resolve(baseDir, token string) string {
	if strings.HasPrefix(token, "/") || filepath.IsAbs(token) || strings.HasPrefix(token, baseDir) {
		return token
	}
	joined := filepath.Join(baseDir, token)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return joined
	}
	return abs
}
