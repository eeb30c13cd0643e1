package config

// Config is the root configuration for artifact-cli.
type Config struct {
	Storage StorageSection `koanf:"storage" yaml:"storage"`
	Naming  NamingSection  `koanf:"naming" yaml:"naming"`
	Log     LogSection     `koanf:"log" yaml:"log"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics"`
	CLI     CLISection     `koanf:"cli" yaml:"cli"`

	// Path is the configuration file the values were read from. Empty
	// when no file was found.
	Path string `koanf:"-" yaml:"-"`
}

// StorageSection selects and tunes the token store engine.
type StorageSection struct {
	// Engine is one of badger, pebble, sql, memory.
	Engine  string        `koanf:"engine" yaml:"engine"`
	DataDir string        `koanf:"data_dir" yaml:"data_dir"`
	Badger  BadgerSection `koanf:"badger" yaml:"badger"`
	Pebble  PebbleSection `koanf:"pebble" yaml:"pebble"`
	SQL     SQLSection    `koanf:"sql" yaml:"sql"`
}

// BadgerSection configures the badger engine.
type BadgerSection struct {
	GCInterval       string  `koanf:"gc_interval" yaml:"gc_interval"`
	GCThreshold      float64 `koanf:"gc_threshold" yaml:"gc_threshold"`
	CacheSize        int64   `koanf:"cache_size" yaml:"cache_size"`
	ValueLogFileSize int64   `koanf:"value_log_file_size" yaml:"value_log_file_size"`
	NumMemtables     int     `koanf:"num_memtables" yaml:"num_memtables"`
	SyncWrites       bool    `koanf:"sync_writes" yaml:"sync_writes"`
}

// PebbleSection configures the pebble engine.
type PebbleSection struct {
	SyncWrites bool  `koanf:"sync_writes" yaml:"sync_writes"`
	CacheSize  int64 `koanf:"cache_size" yaml:"cache_size"`
}

// SQLSection configures the sql engine.
type SQLSection struct {
	Driver   string `koanf:"driver" yaml:"driver"`
	DSN      string `koanf:"dsn" yaml:"dsn"`
	Host     string `koanf:"host" yaml:"host"`
	Port     int    `koanf:"port" yaml:"port"`
	User     string `koanf:"user" yaml:"user"`
	Password string `koanf:"password" yaml:"password"`
	DBName   string `koanf:"dbname" yaml:"dbname"`
	SSLMode  string `koanf:"sslmode" yaml:"sslmode"`
	FilePath string `koanf:"file_path" yaml:"file_path"`

	MaxIdleConns    int    `koanf:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	SlowThreshold   string `koanf:"slow_threshold" yaml:"slow_threshold"`
}

// NamingSection selects the naming scheme.
type NamingSection struct {
	// Alphabet is standard (38 symbols) or legacy (37 symbols, no hyphen).
	Alphabet string   `koanf:"alphabet" yaml:"alphabet"`
	Reserved []string `koanf:"reserved" yaml:"reserved"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MetricsSection configures metric export. Metrics are written once, when
// the command exits.
type MetricsSection struct {
	// Textfile is a path for the Prometheus textfile collector.
	Textfile string `koanf:"textfile" yaml:"textfile"`

	// Pushgateway is the base URL of a Prometheus Pushgateway.
	Pushgateway string `koanf:"pushgateway" yaml:"pushgateway"`
	Job         string `koanf:"job" yaml:"job"`
}

// CLISection holds interactive preferences.
type CLISection struct {
	Output      string `koanf:"output" yaml:"output"`
	HistoryFile string `koanf:"history_file" yaml:"history_file"`
}
