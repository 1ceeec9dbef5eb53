package chunkstore

import "sort"

// LooksLikeDirective reports whether line matches this store's Open,
// Slot, or Close pattern. It is used by lint-style callers that want
// to flag chunk-directive-shaped text appearing somewhere Read would
// not actually interpret it (for example, outside a fenced code block
// in a Markdown-authored document) without duplicating the store's
// delimiter configuration.
func (s *Store) LooksLikeDirective(line string) bool {
	return s.patterns.open.MatchString(line) ||
		s.patterns.slot.MatchString(line) ||
		s.patterns.close.MatchString(line)
}

// UnusedChunk names one stored chunk that no expansion ever
// referenced, together with where it was defined.
type UnusedChunk struct {
	Name     string
	Location Location
}

// CheckUnusedChunks returns every non-file chunk whose reference
// count is still zero, sorted by name. File-chunks are excluded: a
// file-chunk is a root of expansion, not a fragment meant to be
// referenced from elsewhere, so an unreferenced one is not a sign of
// dead literate source (§4.5).
//
// Call this only after every intended Expand/WriteFiles call has
// already run; reference counts reflect expansions performed so far,
// not potential future ones.
func (s *Store) CheckUnusedChunks() []UnusedChunk {
	var unused []UnusedChunk
	for name, chunk := range s.chunks {
		if IsFileChunk(name) {
			continue
		}
		if chunk.References > 0 {
			continue
		}
		unused = append(unused, UnusedChunk{Name: name, Location: chunk.Location})
	}
	sort.Slice(unused, func(i, j int) bool {
		return unused[i].Name < unused[j].Name
	})
	return unused
}
