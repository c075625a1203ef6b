package verifier

const (
	maxManifestBytes = 256 * 1024
	maxFileBytes     = 512 * 1024 * 1024
	maxTotalBytes    = 2 * 1024 * 1024 * 1024
	maxContentFiles  = 10_000
	maxParquetRows   = 1_000_000
	hashChunkSize    = 64 * 1024
)
