// Package clip is the high-level, read/expand/write façade over a
// chunk store and a safe file writer: the entry point every other
// layer (CLI, tests) uses instead of talking to chunkstore and
// safewriter directly.
package clip

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/giannifer7/azadi-noweb/lib/chunkstore"
	"github.com/giannifer7/azadi-noweb/lib/pathguard"
	"github.com/giannifer7/azadi-noweb/lib/safewriter"
)

const fileChunkPrefix = "@file "

// Clip composes a chunk store with a safe file writer.
type Clip struct {
	store            *chunkstore.Store
	writer           *safewriter.Writer
	quiet            bool
	highlightEnabled bool
}

// New constructs a Clip from an already-configured writer and the
// delimiter/marker configuration for its chunk store.
func New(writer *safewriter.Writer, storeConfig chunkstore.Config) *Clip {
	return &Clip{
		store:  chunkstore.New(storeConfig),
		writer: writer,
	}
}

// SetQuiet suppresses the unused-chunk warnings WriteFiles would
// otherwise print to stderr.
func (c *Clip) SetQuiet(quiet bool) { c.quiet = quiet }

// Reset discards every stored chunk definition.
func (c *Clip) Reset() { c.store.Reset() }

// HasChunk reports whether name is defined.
func (c *Clip) HasChunk(name string) bool { return c.store.HasChunk(name) }

// GetFileChunks returns the stored file-chunk names.
func (c *Clip) GetFileChunks() []string { return c.store.GetFileChunks() }

// CheckUnusedChunks returns every defined, never-referenced,
// non-file chunk.
func (c *Clip) CheckUnusedChunks() []chunkstore.UnusedChunk {
	return c.store.CheckUnusedChunks()
}

// ReadFile reads and parses the file at path, using path itself as
// the location label for any diagnostics produced from its content.
func (c *Clip) ReadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return &safewriter.IoError{Cause: err}
	}
	c.store.Read(string(content), path)
	return nil
}

// ReadFiles reads and parses every path in order.
func (c *Clip) ReadFiles(paths []string) error {
	for _, path := range paths {
		if err := c.ReadFile(path); err != nil {
			return err
		}
	}
	return nil
}

// Read parses an in-memory document, labeling its diagnostics with
// fileName.
func (c *Clip) Read(text, fileName string) {
	c.store.Read(text, fileName)
}

// WriteFiles expands and commits every stored file-chunk through the
// writer, in the order chunkstore.Store.GetFileChunks returns them.
// The first failure aborts remaining file-chunks and is returned;
// unused-chunk warnings are printed to stderr afterward unless quiet
// mode is set.
func (c *Clip) WriteFiles() error {
	for _, name := range c.store.GetFileChunks() {
		expanded, err := c.store.Expand(name)
		if err != nil {
			return err
		}
		if err := c.writeChunk(name, expanded); err != nil {
			return err
		}
	}

	if !c.quiet {
		for _, unused := range c.store.CheckUnusedChunks() {
			fmt.Fprintf(os.Stderr, "Warning: %s line %d: chunk '%s' is defined but never referenced\n",
				unused.Location.File, unused.Location.DisplayLine(), unused.Name)
		}
	}
	return nil
}

// writeChunk materializes a single file-chunk's expansion through
// the writer's before_write/after_write sequence.
func (c *Clip) writeChunk(name, content string) error {
	path, ok := chunkstore.FilePath(name)
	if !ok {
		return nil
	}

	stagedPath, err := c.writer.BeforeWrite(path)
	if err != nil {
		return err
	}

	f, err := os.Create(stagedPath)
	if err != nil {
		return &safewriter.IoError{Cause: err}
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return &safewriter.IoError{Cause: err}
	}
	if err := f.Close(); err != nil {
		return &safewriter.IoError{Cause: err}
	}

	return c.writer.AfterWrite(path)
}

// GetChunk writes chunkName's expansion to out, followed by a
// trailing newline, exactly as a terminal consumer of --chunks would
// see it.
func (c *Clip) GetChunk(chunkName string, out io.Writer) error {
	lines, err := c.store.Expand(chunkName)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, lines); err != nil {
		return &safewriter.IoError{Cause: err}
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return &safewriter.IoError{Cause: err}
	}
	return nil
}

// Expand renders chunkName's body with indent prepended to every
// line, without the trailing newline GetChunk adds.
func (c *Clip) Expand(chunkName, indent string) (string, error) {
	content, err := c.store.Expand(chunkName)
	if err != nil {
		return "", err
	}
	if indent == "" {
		return content, nil
	}
	return indentLines(content, indent), nil
}

func indentLines(content, indent string) string {
	lines := strings.SplitAfter(content, "\n")
	var out strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		out.WriteString(indent)
		out.WriteString(line)
	}
	return out.String()
}

// RenderError formats err as the "Error: <file> <line+1>: <message>"
// or "Error: I/O error: <cause>" line spec.md §7 requires, so the CLI
// layer never needs to know which concrete error type it received.
func RenderError(err error) string {
	var chunkErr *chunkstore.Error
	if errors.As(err, &chunkErr) {
		return fmt.Sprintf("Error: %s %d: %s", chunkErr.Location.File, chunkErr.Location.DisplayLine(), chunkErr.Error())
	}

	var violation *pathguard.Violation
	if errors.As(err, &violation) {
		return fmt.Sprintf("Error: %s", violation.Error())
	}

	var modified *safewriter.ModifiedExternally
	if errors.As(err, &modified) {
		return fmt.Sprintf("Error: %s", modified.Error())
	}

	var ioErr *safewriter.IoError
	if errors.As(err, &ioErr) {
		return fmt.Sprintf("Error: %s", ioErr.Error())
	}

	return fmt.Sprintf("Error: I/O error: %s", err)
}
