package chunkstore

import "strings"

// maxDepth bounds recursive expansion (§4.4). A chunk graph deeper
// than this is treated as a configuration error rather than patiently
// exhausted, since legitimate literate programs rarely nest more than
// a handful of levels.
const maxDepth = 100

// Expand renders name's body with every slot reference recursively
// replaced by the referenced chunk's own expanded body, indentation
// propagated per §4.4: a slot's relative indent (its captured leading
// whitespace minus the chunk's own base_indent) is prepended to every
// line the referenced chunk expands to. Expand increments the
// reference count of every chunk it successfully inlines, including
// name itself.
func (s *Store) Expand(name string) (string, error) {
	var out strings.Builder
	if err := s.expandInto(&out, name, "", nil, Location{}); err != nil {
		return "", err
	}
	return out.String(), nil
}

// expandInto writes name's expansion to out, with extraIndent
// prepended to every emitted line. stack holds the names currently
// being expanded, innermost last, and is used for both the depth
// guard and the cycle guard. refLoc is the location of the reference
// (slot line, or the synthetic root location for the initial call)
// that caused name to be entered; it is attached to any error this
// call produces, per §4.4's "reference_location", rather than name's
// own definition site.
func (s *Store) expandInto(out *strings.Builder, name, extraIndent string, stack []string, refLoc Location) error {
	if len(stack) > maxDepth {
		return errRecursionLimit(name, refLoc)
	}
	for _, seen := range stack {
		if seen == name {
			return errRecursiveReference(name, refLoc)
		}
	}

	chunk, ok := s.chunks[name]
	if !ok {
		return errUndefinedChunk(name, refLoc)
	}
	chunk.References++
	stack = append(stack, name)

	for i, line := range chunk.Lines {
		caps := s.patterns.slot.FindStringSubmatch(line)
		if caps == nil {
			out.WriteString(extraIndent)
			out.WriteString(stripBaseIndent(line, chunk.BaseIndent))
			continue
		}

		slotIndent := caps[1]
		refName := caps[2]
		referenceLoc := Location{File: chunk.Location.File, Line: chunk.Location.Line + i}
		if err := s.expandInto(out, refName, extraIndent+relativeIndent(slotIndent, chunk.BaseIndent), stack, referenceLoc); err != nil {
			return err
		}
	}

	return nil
}

// stripBaseIndent removes baseIndent characters from the left of
// line. A line shorter than baseIndent is passed through unchanged,
// per §4.4's content-line rule.
func stripBaseIndent(line string, baseIndent int) string {
	if len(line) <= baseIndent {
		return line
	}
	return line[baseIndent:]
}

// relativeIndent removes baseIndent characters from the left of a
// slot's captured leading whitespace. Captured whitespace no longer
// than baseIndent contributes no indentation at all, per §4.4's slot
// rule (unlike stripBaseIndent, the shorter case yields "" rather than
// the whitespace unchanged).
func relativeIndent(indent string, baseIndent int) string {
	if len(indent) <= baseIndent {
		return ""
	}
	return indent[baseIndent:]
}

// ExpandFile renders a file-chunk's body for materialization by a
// writer; name must carry the "@file " prefix. It is a thin wrapper
// over Expand kept separate so callers can distinguish "expand a
// named fragment" from "render a file's final contents" at the call
// site even though the underlying algorithm is identical.
func (s *Store) ExpandFile(name string) (string, error) {
	return s.Expand(name)
}
