package clip

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/giannifer7/azadi-noweb/lib/chunkstore"
	"github.com/giannifer7/azadi-noweb/lib/safewriter"
)

func newTestClip(t *testing.T) (*Clip, string) {
	t.Helper()
	root := t.TempDir()
	writer, err := safewriter.New(
		filepath.Join(root, "gen"),
		filepath.Join(root, "priv"),
		safewriter.DefaultConfig(),
	)
	if err != nil {
		t.Fatalf("safewriter.New: %v", err)
	}
	return New(writer, chunkstore.DefaultConfig()), root
}

func TestWriteFilesMaterializesFileChunks(t *testing.T) {
	c, root := newTestClip(t)
	c.Read(
		"<<@file out/main.go>>=\n"+
			"package main\n"+
			"<<body>>\n"+
			"@\n"+
			"<<body>>=\n"+
			"func main() {}\n"+
			"@\n",
		"input.txt",
	)

	if err := c.WriteFiles(); err != nil {
		t.Fatalf("WriteFiles returned error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "gen", "out", "main.go"))
	if err != nil {
		t.Fatalf("reading generated file: %v", err)
	}
	want := "package main\nfunc main() {}\n"
	if string(got) != want {
		t.Errorf("generated content = %q, want %q", got, want)
	}
}

func TestGetChunkWritesExpansionWithTrailingNewline(t *testing.T) {
	c, _ := newTestClip(t)
	c.Read("<<greeting>>=\nhello\n@\n", "input.txt")

	var buf bytes.Buffer
	if err := c.GetChunk("greeting", &buf); err != nil {
		t.Fatalf("GetChunk returned error: %v", err)
	}
	if buf.String() != "hello\n\n" {
		t.Errorf("GetChunk output = %q, want %q", buf.String(), "hello\n\n")
	}
}

func TestExpandAppliesIndent(t *testing.T) {
	c, _ := newTestClip(t)
	c.Read("<<body>>=\nline one\nline two\n@\n", "input.txt")

	got, err := c.Expand("body", "  ")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	want := "  line one\n  line two\n"
	if got != want {
		t.Errorf("Expand = %q, want %q", got, want)
	}
}

func TestCheckUnusedChunksSurfacesOnWrite(t *testing.T) {
	c, _ := newTestClip(t)
	c.Read(
		"<<@file out.txt>>=\nx\n@\n"+
			"<<dead>>=\ny\n@\n",
		"input.txt",
	)

	if err := c.WriteFiles(); err != nil {
		t.Fatalf("WriteFiles returned error: %v", err)
	}

	unused := c.CheckUnusedChunks()
	if len(unused) != 1 || unused[0].Name != "dead" {
		t.Fatalf("CheckUnusedChunks = %v, want [dead]", unused)
	}
}

func TestRenderErrorFormatsUndefinedChunk(t *testing.T) {
	c, _ := newTestClip(t)
	c.Read("<<a>>=\n<<missing>>\n@\n", "input.txt")

	_, err := c.Expand("a", "")
	if err == nil {
		t.Fatalf("Expand succeeded, want undefined chunk error")
	}

	rendered := RenderError(err)
	if !contains(rendered, "Error:") || !contains(rendered, "missing") {
		t.Errorf("RenderError = %q, want it to mention 'Error:' and 'missing'", rendered)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
