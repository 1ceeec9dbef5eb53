package chunkstore

import "fmt"

// Location identifies a source position for diagnostics: the origin
// file label (an input filename or a caller-supplied label) and a
// zero-based line index. All user-visible rendering adds one to Line.
type Location struct {
	File string
	Line int
}

// DisplayLine returns the one-based line number shown to users.
func (l Location) DisplayLine() int {
	return l.Line + 1
}

func (l Location) String() string {
	return fmt.Sprintf("%s line %d", l.File, l.DisplayLine())
}
