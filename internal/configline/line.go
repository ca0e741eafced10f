// Package configline reads, classifies and rewrites the lines of a decoder
// configuration file so that every resource it references can live in a
// single flat bundle directory.
package configline

import "strings"

const commentMarker = '#'

// Line is one configuration line: the whitespace separated command tokens
// and whatever followed the first unescaped '#'.
type Line struct {
	Command []string
	// Comment excludes the marker itself and is kept verbatim,
	// leading space included.
	Comment string
}

// Parse splits raw at the first unescaped '#'. It accepts any string.
func Parse(raw string) Line {
	command, comment := raw, ""
	for i := 0; i < len(raw); i++ {
		if raw[i] != commentMarker || (i > 0 && raw[i-1] == '\\') {
			continue
		}
		command, comment = raw[:i], raw[i+1:]
		break
	}
	return Line{
		Command: strings.Fields(command),
		Comment: comment,
	}
}

// Keyword returns the first command token, or "" for blank and comment-only lines.
func (l Line) Keyword() string {
	if len(l.Command) == 0 {
		return ""
	}
	return l.Command[0]
}

// FileToken returns the last command token, which is where file-bearing
// directives keep their path.
func (l Line) FileToken() string {
	if len(l.Command) == 0 {
		return ""
	}
	return l.Command[len(l.Command)-1]
}

// WithFileToken returns a copy of l whose last command token is token.
// l itself is left untouched.
func (l Line) WithFileToken(token string) Line {
	if len(l.Command) == 0 {
		return l
	}
	command := make([]string, len(l.Command))
	copy(command, l.Command)
	command[len(command)-1] = token
	return Line{Command: command, Comment: l.Comment}
}

// String joins the tokens with single spaces and appends "#comment" when
// there is one. Surrounding whitespace is trimmed, so a comment-only line
// renders exactly as it was read.
func (l Line) String() string {
	s := strings.Join(l.Command, " ")
	if l.Comment != "" {
		s += " " + string(commentMarker) + l.Comment
	}
	return strings.TrimSpace(s)
}
