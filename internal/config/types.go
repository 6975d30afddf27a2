package config

// Config is the top-level configuration structure, one sub-struct per
// concern, mirroring the way every section of the data model and
// ambient stack has its own tuning knobs.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	GitHub  GitHubConfig  `yaml:"github"`
	Search  SearchConfig  `yaml:"search"`
	Sync    SyncConfig    `yaml:"sync"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig backs the GITDB_DATA_DIR / GITDB_CONFIG_DIR overrides.
// LanceDir is carried for forward compatibility with a future columnar
// backend swap; the search store itself lives under DataDir.
type StorageConfig struct {
	DataDir   string `yaml:"data_dir" default:""`
	ConfigDir string `yaml:"config_dir" default:""`
	LanceDir  string `yaml:"lance_dir" default:""`
}

// GitHubConfig controls the ghclient connection: BaseURL (e.g. a GitHub
// Enterprise API root) and RequestTimeoutSeconds are passed to
// ghclient.New. PerPage is not passed on; ghclient always requests 100
// items per page. Token is never persisted here -- it lives in
// internal/secure_store -- and the field only holds the token resolved
// at load time from the secure store or GITDB_GITHUB_TOKEN.
type GitHubConfig struct {
	Token                 string `yaml:"-"`
	BaseURL               string `yaml:"base_url" default:"https://api.github.com"`
	PerPage               int    `yaml:"per_page" default:"100"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" default:"30"`
}

// SearchConfig tunes the Search Store's FTS and vector-index fallback,
// named in the Search Store module detail.
type SearchConfig struct {
	VectorDimension int `yaml:"vector_dimension" default:"384"`
	IVFPartitions   int `yaml:"ivf_partitions" default:"8"`
	IVFSubVectors   int `yaml:"ivf_sub_vectors" default:"0"`
	MinRowsForIndex int `yaml:"min_rows_for_index" default:"2000"`
}

// SyncConfig holds Sync Engine defaults.
type SyncConfig struct {
	DefaultFull bool `yaml:"default_full" default:"false"`
}

// UIConfig controls CLI output, mirroring the teacher's UIConfig.
type UIConfig struct {
	OutputFormat string `yaml:"output_format" default:"text"`
	Color        string `yaml:"color" default:"auto"`
	Verbose      bool   `yaml:"verbose" default:"false"`
}

// LoggingConfig controls the package-level *log.Logger used outside
// the CLI's direct cmd.Printf output.
type LoggingConfig struct {
	Level            string `yaml:"level" default:"info"`
	IncludeTimestamp bool   `yaml:"include_timestamp" default:"true"`
}
