package chunkstore

import "fmt"

// Category classifies a chunk-expansion failure so callers (the CLI,
// tests) can branch on the kind of failure without parsing message
// text. Mirrors the category+wrapped-message idiom used throughout
// this codebase's CLI layer for the same reason: a caller that only
// needs "is this recoverable" doesn't need to string-match.
type Category string

const (
	// CategoryRecursionLimit means expansion exceeded the maximum
	// recursion depth (§4.4 depth guard).
	CategoryRecursionLimit Category = "recursion_limit"

	// CategoryRecursiveReference means a chunk referenced itself,
	// directly or through a cycle of other chunks (§4.4 cycle guard).
	CategoryRecursiveReference Category = "recursive_reference"

	// CategoryUndefinedChunk means a reference named a chunk that was
	// never stored.
	CategoryUndefinedChunk Category = "undefined_chunk"
)

// Error is the chunk-store's error type. It carries the chunk name and
// the location of the reference that triggered the failure, so tests
// and callers can recover structured detail via errors.As rather than
// parsing the rendered message.
type Error struct {
	Category Category
	Chunk    string
	Location Location
}

func (e *Error) Error() string {
	switch e.Category {
	case CategoryRecursionLimit:
		return fmt.Sprintf("maximum recursion depth exceeded while expanding chunk '%s'", e.Chunk)
	case CategoryRecursiveReference:
		return fmt.Sprintf("recursive reference detected in chunk '%s'", e.Chunk)
	case CategoryUndefinedChunk:
		return fmt.Sprintf("referenced chunk '%s' is undefined", e.Chunk)
	default:
		return fmt.Sprintf("chunk '%s': unknown error", e.Chunk)
	}
}

func errRecursionLimit(chunk string, loc Location) error {
	return &Error{Category: CategoryRecursionLimit, Chunk: chunk, Location: loc}
}

func errRecursiveReference(chunk string, loc Location) error {
	return &Error{Category: CategoryRecursiveReference, Chunk: chunk, Location: loc}
}

func errUndefinedChunk(chunk string, loc Location) error {
	return &Error{Category: CategoryUndefinedChunk, Chunk: chunk, Location: loc}
}
