package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/giannifer7/azadi-noweb/lib/config"
	"github.com/giannifer7/azadi-noweb/lib/safewriter"
)

func TestSplitCommaListTrimsAndDropsEmpty(t *testing.T) {
	got := splitCommaList(" setup, teardown ,,body")
	want := []string{"setup", "teardown", "body"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitCommaList = %v, want %v", got, want)
	}
}

func TestSplitCommaListEmptyStringReturnsNil(t *testing.T) {
	if got := splitCommaList(""); got != nil {
		t.Errorf("splitCommaList(\"\") = %v, want nil", got)
	}
}

func TestApplyFlagOverridesLeavesUnsetFieldsAtConfigDefaults(t *testing.T) {
	cfg := config.Default()
	applyFlagOverrides(cfg, cliFlags{})

	if cfg.Gen != "gen" || cfg.PrivDir != "_azadi_work" {
		t.Errorf("unset flags changed config: gen=%q privDir=%q", cfg.Gen, cfg.PrivDir)
	}
	if cfg.BackupEnabled == nil || !*cfg.BackupEnabled {
		t.Errorf("BackupEnabled = %v, want true", cfg.BackupEnabled)
	}
}

func TestApplyFlagOverridesNoBackupDisablesBackup(t *testing.T) {
	cfg := config.Default()
	applyFlagOverrides(cfg, cliFlags{noBackup: true})

	if cfg.BackupEnabled == nil || *cfg.BackupEnabled {
		t.Errorf("BackupEnabled = %v, want false after --no-backup", cfg.BackupEnabled)
	}
}

func TestApplyFlagOverridesCommentMarkersSplitsList(t *testing.T) {
	cfg := config.Default()
	applyFlagOverrides(cfg, cliFlags{commentMarkers: "#,;,//"})

	want := []string{"#", ";", "//"}
	if !reflect.DeepEqual(cfg.CommentMarkers, want) {
		t.Errorf("CommentMarkers = %v, want %v", cfg.CommentMarkers, want)
	}
}

func TestWriterConfigTranslatesCompressionAndEncryption(t *testing.T) {
	cfg := config.Default()
	cfg.BackupCompression = "zstd"
	cfg.BackupEncryptTo = "age1examplerecipient"

	writerCfg := writerConfig(cfg)
	if writerCfg.BackupCompression != safewriter.CompressionZstd {
		t.Errorf("BackupCompression = %q, want zstd", writerCfg.BackupCompression)
	}
	if writerCfg.BackupEncryptionRecipient != "age1examplerecipient" {
		t.Errorf("BackupEncryptionRecipient = %q", writerCfg.BackupEncryptionRecipient)
	}
}

func TestRunClipWritesFileChunkEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "book.txt")
	input := "<<@file out.txt>>=\n" +
		"hello\n" +
		"  <<body>>\n" +
		"@\n" +
		"<<body>>=\n" +
		"world\n" +
		"@\n"
	if err := os.WriteFile(inputPath, []byte(input), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	flags := cliFlags{
		privDir: filepath.Join(dir, "work"),
		gen:     filepath.Join(dir, "gen"),
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if err := runClip(logger, flags, []string{inputPath}); err != nil {
		t.Fatalf("runClip returned error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "gen", "out.txt"))
	if err != nil {
		t.Fatalf("reading generated file: %v", err)
	}
	want := "hello\n  world\n"
	if string(got) != want {
		t.Errorf("generated content = %q, want %q", got, want)
	}
}

func TestRunClipExtractsChunkToOutputFile(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "book.txt")
	input := "<<greeting>>=\nhi there\n@\n"
	if err := os.WriteFile(inputPath, []byte(input), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	outputPath := filepath.Join(dir, "extracted.txt")

	flags := cliFlags{
		privDir: filepath.Join(dir, "work"),
		gen:     filepath.Join(dir, "gen"),
		chunks:  "greeting",
		output:  outputPath,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if err := runClip(logger, flags, []string{inputPath}); err != nil {
		t.Fatalf("runClip returned error: %v", err)
	}

	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading extracted output: %v", err)
	}
	want := "hi there\n\n"
	if string(got) != want {
		t.Errorf("extracted content = %q, want %q", got, want)
	}
}
