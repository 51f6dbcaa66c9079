package config

// Config is the top-level ziprun configuration, corresponding to .ziprun.yml.
type Config struct {
	DataDir         string        `yaml:"data_dir" koanf:"data_dir"`
	Port            int           `yaml:"port" koanf:"port"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	MaxUploadMB     int           `yaml:"max_upload_mb" koanf:"max_upload_mb"`
	Runtime         RuntimeConfig `yaml:"runtime" koanf:"runtime"`
	Archive         ArchiveConfig `yaml:"archive" koanf:"archive"`
}

// RuntimeConfig is the default runtime configuration handed to composed
// documents until one is stored in the settings store.
type RuntimeConfig struct {
	BaseURL string `yaml:"baseurl" koanf:"baseurl"`
	Key     string `yaml:"key" koanf:"key"`
}

// ArchiveConfig controls how uploaded archives are read.
type ArchiveConfig struct {
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}
