// clip extracts literate-programming chunks from one or more input
// documents, expanding references and writing every file-chunk to a
// generated output tree, or prints selected chunks to stdout/--output.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/giannifer7/azadi-noweb/lib/chunkstore"
	"github.com/giannifer7/azadi-noweb/lib/clip"
	"github.com/giannifer7/azadi-noweb/lib/config"
	"github.com/giannifer7/azadi-noweb/lib/safewriter"
	"github.com/giannifer7/azadi-noweb/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, clip.RenderError(err))
		os.Exit(1)
	}
}

// cliFlags holds every flag's destination variable, named the way
// each pflag.*Var call names its own destination.
type cliFlags struct {
	output              string
	chunks              string
	chunksFilter        string
	privDir             string
	gen                 string
	openDelim           string
	closeDelim          string
	chunkEnd            string
	commentMarkers      string
	configPath          string
	backupCompression   string
	backupEncryptTo     string
	noBackup            bool
	noModificationCheck bool
	lint                bool
	highlight           bool
	quiet               bool
	verbose             bool
	showVersion         bool
}

func run() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println(version.Full())
		return nil
	}

	var flags cliFlags
	flagSet := pflag.NewFlagSet("clip", pflag.ContinueOnError)
	flagSet.StringVar(&flags.output, "output", "", "sink file for --chunks extraction (default stdout)")
	flagSet.StringVar(&flags.chunks, "chunks", "", "comma-separated chunk names to extract")
	flagSet.StringVar(&flags.chunksFilter, "chunks-filter", "", "fuzzy-filter the --chunks list before resolving it")
	flagSet.StringVar(&flags.privDir, "priv-dir", "", "staging directory (default _azadi_work)")
	flagSet.StringVar(&flags.gen, "gen", "", "output root (default gen)")
	flagSet.StringVar(&flags.openDelim, "open-delim", "", "chunk open delimiter (default <<)")
	flagSet.StringVar(&flags.closeDelim, "close-delim", "", "chunk close delimiter (default >>)")
	flagSet.StringVar(&flags.chunkEnd, "chunk-end", "", "end-marker literal (default @)")
	flagSet.StringVar(&flags.commentMarkers, "comment-markers", "", "comma-separated comment markers (default #,//)")
	flagSet.StringVar(&flags.configPath, "config", "", "optional YAML config file (flags override it)")
	flagSet.StringVar(&flags.backupCompression, "backup-compression", "", "backup compression: none, lz4, or zstd")
	flagSet.StringVar(&flags.backupEncryptTo, "backup-encrypt-to", "", "age recipient to encrypt backups to")
	flagSet.BoolVar(&flags.noBackup, "no-backup", false, "disable backup_enabled")
	flagSet.BoolVar(&flags.noModificationCheck, "no-modification-check", false, "disable modification_check")
	flagSet.BoolVar(&flags.lint, "lint", false, "run lint_documents over all inputs and print findings to stderr")
	flagSet.BoolVar(&flags.highlight, "highlight", false, "enable syntax-highlighted --chunks preview when stdout is a terminal")
	flagSet.BoolVar(&flags.quiet, "quiet", false, "suppress unused-chunk warnings")
	flagSet.BoolVarP(&flags.verbose, "verbose", "v", false, "raise log level from warn to debug")
	flagSet.BoolVar(&flags.showVersion, "version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if flags.showVersion {
		fmt.Println(version.Full())
		return nil
	}

	inputs := flagSet.Args()
	if len(inputs) == 0 {
		printHelp(flagSet)
		return fmt.Errorf("at least one input file is required")
	}

	logLevel := slog.LevelWarn
	if flags.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	return runClip(logger, flags, inputs)
}

func runClip(logger *slog.Logger, flags cliFlags, inputs []string) error {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return &safewriter.IoError{Cause: err}
	}
	applyFlagOverrides(cfg, flags)
	logger.Debug("configuration resolved", "priv_dir", cfg.PrivDir, "gen", cfg.Gen)

	writer, err := safewriter.New(cfg.Gen, cfg.PrivDir, writerConfig(cfg))
	if err != nil {
		return err
	}

	storeConfig := chunkstore.Config{
		OpenDelim:      cfg.OpenDelim,
		CloseDelim:     cfg.CloseDelim,
		ChunkEnd:       cfg.ChunkEnd,
		CommentMarkers: cfg.CommentMarkers,
	}

	engine := clip.New(writer, storeConfig)
	engine.SetQuiet(flags.quiet)
	engine.SetHighlightEnabled(flags.highlight)

	for _, path := range inputs {
		logger.Debug("reading input", "file", path)
		if err := engine.ReadFile(path); err != nil {
			return err
		}
		if flags.lint {
			content, readErr := os.ReadFile(path)
			if readErr != nil {
				return &safewriter.IoError{Cause: readErr}
			}
			for _, finding := range engine.LintDocuments(string(content), path) {
				fmt.Fprintf(os.Stderr, "Warning: %s line %d: directive-shaped text outside a fenced code block: %s\n",
					finding.FileLabel, finding.Line+1, strings.TrimSpace(finding.Text))
			}
		}
	}

	if flags.chunks != "" {
		return extractChunks(engine, flags)
	}

	fileChunks := engine.GetFileChunks()
	logger.Debug("writing file chunks", "count", len(fileChunks))
	if err := engine.WriteFiles(); err != nil {
		return err
	}

	totalBytes := writtenBytes(cfg.Gen, fileChunks)
	logger.Info("wrote generated files",
		"files", len(fileChunks),
		"bytes", humanize.Bytes(totalBytes),
	)
	return nil
}

// writtenBytes sums the on-disk size of every file-chunk's committed
// output under genBase, for the human-readable write summary. A
// missing file (only possible if a file-chunk's path resolved to
// nothing, which write_files already guards against) contributes zero
// rather than failing the summary.
func writtenBytes(genBase string, fileChunks []string) uint64 {
	var total uint64
	for _, name := range fileChunks {
		path, ok := chunkstore.FilePath(name)
		if !ok {
			continue
		}
		info, err := os.Stat(filepath.Join(genBase, path))
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}
	return total
}

// extractChunks implements --chunks (optionally narrowed by
// --chunks-filter), writing each requested chunk's expansion, in
// order, to --output or stdout.
func extractChunks(engine *clip.Clip, flags cliFlags) error {
	names := splitCommaList(flags.chunks)
	if flags.chunksFilter != "" {
		names = clip.FuzzyFilter(names, flags.chunksFilter)
	}

	out := os.Stdout
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return &safewriter.IoError{Cause: err}
		}
		defer f.Close()
		out = f
	}

	for _, name := range names {
		if flags.highlight {
			rendered, err := engine.PreviewChunk(name, "", "")
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(out, rendered); err != nil {
				return &safewriter.IoError{Cause: err}
			}
			continue
		}
		if err := engine.GetChunk(name, out); err != nil {
			return err
		}
	}
	return nil
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// applyFlagOverrides mutates cfg in place, overwriting any field whose
// flag was actually set on the command line. Flags always win over
// both the config file and the built-in defaults.
func applyFlagOverrides(cfg *config.Config, flags cliFlags) {
	if flags.privDir != "" {
		cfg.PrivDir = flags.privDir
	}
	if flags.gen != "" {
		cfg.Gen = flags.gen
	}
	if flags.openDelim != "" {
		cfg.OpenDelim = flags.openDelim
	}
	if flags.closeDelim != "" {
		cfg.CloseDelim = flags.closeDelim
	}
	if flags.chunkEnd != "" {
		cfg.ChunkEnd = flags.chunkEnd
	}
	if flags.commentMarkers != "" {
		cfg.CommentMarkers = splitCommaList(flags.commentMarkers)
	}
	if flags.backupCompression != "" {
		cfg.BackupCompression = flags.backupCompression
	}
	if flags.backupEncryptTo != "" {
		cfg.BackupEncryptTo = flags.backupEncryptTo
	}
	if flags.noBackup {
		disabled := false
		cfg.BackupEnabled = &disabled
	}
	if flags.noModificationCheck {
		disabled := false
		cfg.ModificationCheck = &disabled
	}
}

func writerConfig(cfg *config.Config) safewriter.Config {
	writerCfg := safewriter.DefaultConfig()
	if cfg.BackupEnabled != nil {
		writerCfg.BackupEnabled = *cfg.BackupEnabled
	}
	if cfg.ModificationCheck != nil {
		writerCfg.ModificationCheck = *cfg.ModificationCheck
	}
	writerCfg.BackupCompression = safewriter.CompressionAlgorithm(cfg.BackupCompression)
	writerCfg.BackupEncryptionRecipient = cfg.BackupEncryptTo
	return writerCfg
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `clip — expand literate-programming chunks into generated source files.

Reads one or more input documents, recognizes chunk definitions and
references by delimiter, expands every file-chunk, and commits the
result to the output tree via a staged, backed-up write.

Usage:
  clip [flags] <input-file>...

Examples:
  # Expand every file-chunk referenced from a literate document
  clip book.md.txt

  # Print a single chunk's expansion to stdout
  clip --chunks main-loop book.md.txt

  # Narrow a large chunk list with a fuzzy pattern before extracting
  clip --chunks setup,teardown --chunks-filter http book.md.txt

  # Flag directive-shaped prose outside fenced code blocks
  clip --lint book.md.txt

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
