package safewriter

// CompressionAlgorithm names the optional codec applied to backup
// copies written under old_dir. The gen_base output is never
// compressed; compression only ever affects the backup tree.
type CompressionAlgorithm string

const (
	CompressionNone CompressionAlgorithm = "none"
	CompressionLZ4  CompressionAlgorithm = "lz4"
	CompressionZstd CompressionAlgorithm = "zstd"
)

// Config is the writer's configuration record. BackupEnabled and
// ModificationCheck are the two options spec.md names; the remaining
// three fields are additive, off-by-default extensions that never
// alter gen_base's committed bytes.
type Config struct {
	// BackupEnabled, when true, copies the previously committed
	// version of a file to old_dir before it is overwritten.
	BackupEnabled bool

	// ModificationCheck, when true, refuses a commit whose
	// destination mtime has diverged from the mtime recorded at the
	// last successful commit of that path.
	ModificationCheck bool

	// BackupCompression selects a codec for the old_dir copy. Leaving
	// it at CompressionNone (the default) writes the backup
	// uncompressed, exactly as spec.md describes.
	BackupCompression CompressionAlgorithm

	// BackupEncryptionRecipient, when non-empty, is an age X25519
	// recipient string; the old_dir copy is encrypted to it before
	// being written. gen_base output is unaffected.
	BackupEncryptionRecipient string

	// UseBlake3Comparison substitutes a streaming BLAKE3 digest
	// comparison for the byte-for-byte read atomicReplace uses to skip
	// rewriting a destination whose content is unchanged. Observably
	// equivalent; faster on large files.
	UseBlake3Comparison bool
}

// DefaultConfig returns spec.md §4.2's defaults: both backups and the
// modification check enabled, no compression, no encryption.
func DefaultConfig() Config {
	return Config{
		BackupEnabled:      true,
		ModificationCheck:  true,
		BackupCompression:  CompressionNone,
		UseBlake3Comparison: false,
	}
}
