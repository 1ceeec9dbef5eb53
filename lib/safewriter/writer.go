// Package safewriter commits generated file content to a tree on
// disk through a stage-then-replace sequence, keeping a backup of
// whatever it overwrites and refusing to clobber files that changed
// underneath it since the last commit.
package safewriter

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/giannifer7/azadi-noweb/lib/pathguard"
)

const oldDirName = "__old__"

// Writer stages writes under private_dir and commits them into
// gen_base, keeping a parallel backup tree under old_dir.
type Writer struct {
	genBase    string
	privateDir string
	oldDir     string
	config     Config

	lastCommitMtime map[string]time.Time
}

// New creates the gen_base, private_dir, and old_dir trees (old_dir
// nested under private_dir; it mirrors gen_base's relative paths) and
// returns a Writer configured with cfg.
func New(genBase, privateDir string, cfg Config) (*Writer, error) {
	oldDir := filepath.Join(privateDir, oldDirName)

	for _, dir := range []string{genBase, privateDir, oldDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, wrapIo(err)
		}
	}

	return &Writer{
		genBase:         genBase,
		privateDir:      privateDir,
		oldDir:          oldDir,
		config:          cfg,
		lastCommitMtime: make(map[string]time.Time),
	}, nil
}

// GetGenBase returns the root of the committed output tree.
func (w *Writer) GetGenBase() string { return w.genBase }

// GetOldDir returns the root of the backup tree.
func (w *Writer) GetOldDir() string { return w.oldDir }

// GetPrivateDir returns the root of the staging tree.
func (w *Writer) GetPrivateDir() string { return w.privateDir }

// GetConfig returns the writer's current configuration.
func (w *Writer) GetConfig() Config { return w.config }

// SetConfig replaces the writer's configuration.
func (w *Writer) SetConfig(cfg Config) { w.config = cfg }

// backupName appends the codec's extension to relativePath when
// compression is enabled, so the backup's name shows which codec
// wrote it. A backup left under another name by an earlier
// compression setting is not removed.
func (w *Writer) backupName(relativePath string) string {
	switch w.config.BackupCompression {
	case CompressionLZ4:
		return relativePath + ".lz4"
	case CompressionZstd:
		return relativePath + ".zst"
	default:
		return relativePath
	}
}

func (w *Writer) prepareWriteFile(relativePath string) error {
	if err := pathguard.Check(relativePath); err != nil {
		return err
	}
	dir := filepath.Dir(relativePath)
	for _, base := range []string{w.genBase, w.oldDir, w.privateDir} {
		if err := os.MkdirAll(filepath.Join(base, dir), 0o755); err != nil {
			return wrapIo(err)
		}
	}
	return nil
}

// BeforeWrite validates relativePath, ensures every ancestor
// directory exists under private_dir, gen_base, and old_dir, and
// returns the staging path the caller should write content to.
func (w *Writer) BeforeWrite(relativePath string) (string, error) {
	if err := w.prepareWriteFile(relativePath); err != nil {
		return "", err
	}
	return filepath.Join(w.privateDir, relativePath), nil
}

// AfterWrite commits the staged file at relativePath into gen_base,
// performing the modification check, the backup copy, and the
// atomic replace in that order, per spec.md §4.2.
func (w *Writer) AfterWrite(relativePath string) error {
	if err := w.prepareWriteFile(relativePath); err != nil {
		return err
	}

	stagedPath := filepath.Join(w.privateDir, relativePath)
	destPath := filepath.Join(w.genBase, relativePath)

	if w.config.ModificationCheck {
		if info, err := os.Stat(destPath); err == nil {
			last, tracked := w.lastCommitMtime[relativePath]
			if tracked && !info.ModTime().Equal(last) {
				return &ModifiedExternally{Path: destPath}
			}
		} else if !os.IsNotExist(err) {
			return wrapIo(err)
		}
	}

	if w.config.BackupEnabled {
		if _, err := os.Stat(destPath); err == nil {
			if err := w.writeBackup(relativePath, destPath); err != nil {
				return err
			}
		} else if !os.IsNotExist(err) {
			return wrapIo(err)
		}
	}

	if err := w.atomicReplace(stagedPath, destPath); err != nil {
		return err
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return wrapIo(err)
	}
	w.lastCommitMtime[relativePath] = info.ModTime()

	return nil
}

// writeBackup copies the existing committed file at sourcePath (the
// version about to be overwritten) to old_dir under relativePath,
// compressing and/or encrypting the copy according to config. The
// previous backup content at that logical path, if any, is
// overwritten unconditionally: old_dir holds the content committed
// just before the current one, not a full history.
func (w *Writer) writeBackup(relativePath, sourcePath string) error {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return wrapIo(err)
	}

	backupPath := filepath.Join(w.oldDir, w.backupName(relativePath))

	f, err := os.Create(backupPath)
	if err != nil {
		return wrapIo(err)
	}
	defer f.Close()

	var dst io.Writer = f
	var closers []io.Closer

	if w.config.BackupEncryptionRecipient != "" {
		recipient, err := age.ParseX25519Recipient(w.config.BackupEncryptionRecipient)
		if err != nil {
			return wrapIo(err)
		}
		enc, err := age.Encrypt(dst, recipient)
		if err != nil {
			return wrapIo(err)
		}
		dst = enc
		closers = append(closers, enc)
	}

	switch w.config.BackupCompression {
	case CompressionLZ4:
		lzw := lz4.NewWriter(dst)
		dst = lzw
		closers = append(closers, lzw)
	case CompressionZstd:
		zw, err := zstd.NewWriter(dst)
		if err != nil {
			return wrapIo(err)
		}
		dst = zw
		closers = append(closers, zw)
	}

	if _, err := dst.Write(content); err != nil {
		return wrapIo(err)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			return wrapIo(err)
		}
	}
	return nil
}

// RestoreBackup reads the backup file at relativePath back into its
// original plaintext bytes, reversing whatever compression the
// current config specifies. When the backup is encrypted, identities
// must contain the matching age private identity; an encrypted
// backup cannot be opened with its recipient string alone.
func (w *Writer) RestoreBackup(relativePath string, identities ...age.Identity) ([]byte, error) {
	backupPath := filepath.Join(w.oldDir, w.backupName(relativePath))
	f, err := os.Open(backupPath)
	if err != nil {
		return nil, wrapIo(err)
	}
	defer f.Close()

	var src io.Reader = f

	if w.config.BackupEncryptionRecipient != "" {
		dec, err := age.Decrypt(src, identities...)
		if err != nil {
			return nil, wrapIo(err)
		}
		src = dec
	}

	switch w.config.BackupCompression {
	case CompressionLZ4:
		src = lz4.NewReader(src)
	case CompressionZstd:
		zr, err := zstd.NewReader(src)
		if err != nil {
			return nil, wrapIo(err)
		}
		defer zr.Close()
		src = zr
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, wrapIo(err)
	}
	return data, nil
}

// atomicReplace copies stagedPath over destPath's content via a
// temporary file in destPath's directory followed by os.Rename, so a
// reader can never observe a partially written destination.
func (w *Writer) atomicReplace(stagedPath, destPath string) error {
	var unchanged bool
	if w.config.UseBlake3Comparison {
		same, err := blake3Equal(stagedPath, destPath)
		if err != nil {
			return err
		}
		unchanged = same
	} else {
		same, err := bytesEqual(stagedPath, destPath)
		if err != nil && !os.IsNotExist(err) {
			return wrapIo(err)
		}
		unchanged = err == nil && same
	}
	if unchanged {
		return nil
	}

	content, err := os.ReadFile(stagedPath)
	if err != nil {
		return wrapIo(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".clip-tmp-*")
	if err != nil {
		return wrapIo(err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return wrapIo(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return wrapIo(err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return wrapIo(err)
	}
	return nil
}

// bytesEqual reports whether source and destination hold identical
// bytes. A missing destination is reported as a non-nil error so
// callers can distinguish "doesn't exist yet" (always write) from a
// genuine read failure.
func bytesEqual(source, destination string) (bool, error) {
	if _, err := os.Stat(destination); err != nil {
		return false, err
	}
	a, err := os.ReadFile(source)
	if err != nil {
		return false, err
	}
	b, err := os.ReadFile(destination)
	if err != nil {
		return false, err
	}
	return bytes.Equal(a, b), nil
}

// blake3Equal is the BLAKE3-digest substitute for bytesEqual, used
// when Config.UseBlake3Comparison is set. It streams both files
// through the hasher rather than holding them fully in memory.
func blake3Equal(source, destination string) (bool, error) {
	if _, err := os.Stat(destination); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, wrapIo(err)
	}

	digestA, err := blake3Digest(source)
	if err != nil {
		return false, err
	}
	digestB, err := blake3Digest(destination)
	if err != nil {
		return false, err
	}
	return bytes.Equal(digestA, digestB), nil
}

func blake3Digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapIo(err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, wrapIo(err)
	}
	return h.Sum(nil), nil
}
