package store

// Backend names the storage implementation selected at process startup
type Backend string

const (
	// BackendPostgres stores listings, leads, and ingest logs in Postgres
	BackendPostgres Backend = "postgres"

	// BackendFile stores everything in one durable JSON document
	BackendFile Backend = "file"
)

// Config aggregates backend configuration
type Config struct {
	AppName string

	Backend Backend
	PG      PGConfig
	File    FileConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// FileConfig configures the flat-file document backend
type FileConfig struct {
	Path string
}
