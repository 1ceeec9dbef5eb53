package clip

import "testing"

func TestPreviewChunkMatchesExpandWhenHighlightingDisabled(t *testing.T) {
	c, _ := newTestClip(t)
	c.Read("<<@file out.go>>=\npackage main\n@\n", "input.txt")

	expanded, err := c.Expand("@file out.go", "")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	preview, err := c.PreviewChunk("@file out.go", "", "")
	if err != nil {
		t.Fatalf("PreviewChunk returned error: %v", err)
	}

	if preview != expanded {
		t.Errorf("PreviewChunk = %q, want it to equal Expand output %q when highlighting is off", preview, expanded)
	}
}

func TestPreviewChunkStaysInertWhenHighlightingEnabledButNotATerminal(t *testing.T) {
	c, _ := newTestClip(t)
	c.SetHighlightEnabled(true)
	c.Read("<<@file out.go>>=\npackage main\n@\n", "input.txt")

	expanded, err := c.Expand("@file out.go", "")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	preview, err := c.PreviewChunk("@file out.go", "", "")
	if err != nil {
		t.Fatalf("PreviewChunk returned error: %v", err)
	}

	if StripHighlighting(preview) != expanded {
		t.Errorf("stripped preview = %q, want %q", StripHighlighting(preview), expanded)
	}
}

func TestGuessLanguageFromFileChunkExtension(t *testing.T) {
	cases := map[string]string{
		"@file main.go":  "go",
		"@file lib.rs":   "rust",
		"@file notes.md": "markdown",
		"plain-fragment": "text",
		"@file noext":    "text",
	}
	for name, want := range cases {
		if got := guessLanguage(name); got != want {
			t.Errorf("guessLanguage(%q) = %q, want %q", name, got, want)
		}
	}
}
