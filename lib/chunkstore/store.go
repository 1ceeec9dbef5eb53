// Package chunkstore parses literate-programming input documents,
// recognizes chunk definitions and references through configurable
// delimiters and comment markers, stores chunk bodies keyed by name,
// and recursively expands references into a final line sequence.
//
// See §3 and §4.3-§4.5 of SPEC_FULL.md for the data model and the
// parser/expander/diagnostics contracts this package implements.
package chunkstore

import (
	"sort"
	"strings"

	"github.com/giannifer7/azadi-noweb/lib/pathguard"
)

// fileChunkPrefix marks a chunk name as a file-chunk: its expansion
// is a materialized output file rather than an inclusion fragment.
const fileChunkPrefix = "@file "

// Chunk is a named unit of literate source: an ordered sequence of
// raw lines (each ending in "\n"), the column at which its opening
// directive was found, the location of that opening directive, and a
// reference counter incremented on every successful expansion.
type Chunk struct {
	Lines      []string
	BaseIndent int
	Location   Location
	References int
}

// Store holds every chunk parsed from one or more input documents,
// plus the auxiliary list of file-chunk names, sorted by name. Zero value is
// not usable; construct with New.
type Store struct {
	chunks     map[string]*Chunk
	fileChunks []string
	patterns   *patterns
}

// Config configures the delimiters, end marker, and comment markers a
// Store's regular expressions are built from (§4.3).
type Config struct {
	OpenDelim      string
	CloseDelim     string
	ChunkEnd       string
	CommentMarkers []string
}

// DefaultConfig returns the commonly used defaults named in §6:
// "<<" / ">>" / "@" delimiters with "#" and "//" comment markers.
func DefaultConfig() Config {
	return Config{
		OpenDelim:      "<<",
		CloseDelim:     ">>",
		ChunkEnd:       "@",
		CommentMarkers: []string{"#", "//"},
	}
}

// New constructs an empty Store configured with the given delimiters.
func New(cfg Config) *Store {
	return &Store{
		chunks:   make(map[string]*Chunk),
		patterns: buildPatterns(cfg.OpenDelim, cfg.CloseDelim, cfg.ChunkEnd, cfg.CommentMarkers),
	}
}

// IsValidName reports whether name satisfies the chunk-name rules of
// §3: file-chunk names (prefixed "@file ") must carry a non-empty,
// whitespace-free, PathGuard-safe path; regular names must be
// non-empty and whitespace-free.
func IsValidName(name string) bool {
	if rest, ok := stripFileChunkPrefix(name); ok {
		return rest != "" && !containsWhitespace(rest) && pathIsSafe(rest)
	}
	return name != "" && !containsWhitespace(name)
}

// IsFileChunk reports whether name carries the file-chunk prefix.
func IsFileChunk(name string) bool {
	return strings.HasPrefix(name, fileChunkPrefix)
}

// FilePath returns the path carried by a file-chunk name (the part
// after the "@file " prefix, surrounding whitespace trimmed). The
// second return value is false when name is not a file-chunk name.
func FilePath(name string) (string, bool) {
	rest, ok := stripFileChunkPrefix(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func stripFileChunkPrefix(name string) (string, bool) {
	if !strings.HasPrefix(name, fileChunkPrefix) {
		return "", false
	}
	return name[len(fileChunkPrefix):], true
}

// pathIsSafe reports whether path passes PathGuard's traversal and
// absolute-path checks. File-chunk names carry a path that will later
// be handed to the safe file writer, so the same validation is
// applied here, at parse time, to reject unsafe directives early
// rather than discovering the violation only at write time.
func pathIsSafe(path string) bool {
	return pathguard.Check(path) == nil
}

func containsWhitespace(s string) bool {
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			return true
		}
	}
	return false
}

// Read parses text line by line, recognizing chunk opens, closes, and
// content lines per §4.3, and merges the result into the store. file
// is the origin label attached to every Location produced while
// reading this document; it is not interpreted, only stored and later
// displayed.
//
// Reading accumulates: a second call to Read (for a second document)
// can reference chunks defined in the first, and vice versa —
// resolution happens at expansion time, not at parse time.
func (s *Store) Read(text, file string) {
	var currentChunk string
	haveCurrentChunk := false
	lineNo := -1

	for _, rawLine := range splitLines(text) {
		lineNo++
		line := rawLine

		if caps := s.patterns.open.FindStringSubmatch(line); caps != nil {
			indent := caps[1]
			baseName := caps[2]
			isReplace := strings.Contains(line, "@replace")
			isFile := strings.Contains(line, "@file")

			fullName := baseName
			if isFile {
				fullName = fileChunkPrefix + baseName
			}

			if !IsValidName(fullName) {
				// Malformed/unsafe directive: ignored per §4.3 step 1
				// and §7 ("malformed directives are silently ignored").
				continue
			}

			if isReplace {
				delete(s.chunks, fullName)
			}
			if _, exists := s.chunks[fullName]; !exists {
				s.chunks[fullName] = &Chunk{
					BaseIndent: len(indent),
					Location:   Location{File: file, Line: lineNo},
				}
			}
			currentChunk = fullName
			haveCurrentChunk = true
			continue
		}

		if s.patterns.close.MatchString(line) {
			haveCurrentChunk = false
			currentChunk = ""
			continue
		}

		if haveCurrentChunk {
			chunk := s.chunks[currentChunk]
			chunk.Lines = append(chunk.Lines, ensureTrailingNewline(rawLine))
		}
	}

	s.rebuildFileChunks()
}

// rebuildFileChunks recomputes the file-chunks list as every stored
// key carrying the file-chunk prefix, sorted by name so the order is
// the same on every run. §3 requires this list to mirror the map with
// no duplicates; rebuilding from scratch after every parse trivially
// satisfies both.
func (s *Store) rebuildFileChunks() {
	names := make([]string, 0, len(s.fileChunks))
	for name := range s.chunks {
		if IsFileChunk(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	s.fileChunks = names
}

// HasChunk reports whether name is present in the store.
func (s *Store) HasChunk(name string) bool {
	_, ok := s.chunks[name]
	return ok
}

// GetFileChunks returns the store's file-chunk names. The returned
// slice is owned by the store and must not be mutated by the caller.
func (s *Store) GetFileChunks() []string {
	return s.fileChunks
}

// Reset clears the chunk map and file-chunks list. Writer state (if
// any, held by a separate component) is untouched.
func (s *Store) Reset() {
	s.chunks = make(map[string]*Chunk)
	s.fileChunks = nil
}

// splitLines splits text into lines the way Rust's str::lines does:
// on "\n", with any trailing "\r" stripped, and no trailing empty
// element for a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	trimmed := strings.TrimSuffix(text, "\n")
	lines := strings.Split(trimmed, "\n")
	for i := range lines {
		if i < len(lines)-1 || len(trimmed) < len(text) {
			lines[i] = strings.TrimSuffix(lines[i], "\r")
		}
	}
	return lines
}

func ensureTrailingNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n"
}
