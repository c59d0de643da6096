package walog

const (
	ConfigVersion = 1

	DefaultMaxLogSize int64 = 1024 * 1024 * 1024
	DefaultWALDir           = "walogs"
	DefaultAddress          = "localhost:9997"
	DefaultCatalogDir       = "catalog"
)

// Log file defaults
const (
	DefaultAppDir        = ".walog"
	DefaultLogDir        = "logs"
	DefaultLogFileName   = "walog.log"
	DefaultLogMaxSize    = 100
	DefaultLogMaxBackups = 3
	DefaultLogLevel      = "info"
)
