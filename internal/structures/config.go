package structures

import "time"

type Server struct {
	Host      string `yaml:"host" validate:"required"`
	Port      int    `yaml:"port" validate:"required|uint|min:1"`
	RateLimit int    `yaml:"rateLimit" validate:"min:0"`
}

type Persistence struct {
	KeyStatePath string `yaml:"keyStatePath" validate:"required|unixPath"`
	UsageLogPath string `yaml:"usageLogPath" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type AccessConfig struct {
	ValidityDays int      `yaml:"validityDays" validate:"required|min:1"`
	KeysFile     string   `yaml:"keysFile"`
	FallbackKeys []string `yaml:"fallbackKeys"`
}

type SharingConfig struct {
	DeviceThreshold int           `yaml:"deviceThreshold" validate:"required|min:1"`
	TimeWindow      time.Duration `yaml:"timeWindow" validate:"required|min:1"`
}

type VaultConfig struct {
	Enabled bool          `yaml:"enabled"`
	Address string        `yaml:"address"`
	Token   string        `yaml:"token"`
	Mount   string        `yaml:"mount"`
	Path    string        `yaml:"path"`
	Field   string        `yaml:"field"`
	Timeout time.Duration `yaml:"timeout"`
}

type ArchiveConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	Interval  time.Duration `yaml:"interval"`
	Retention time.Duration `yaml:"retention"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Access      AccessConfig  `yaml:"access"`
	Sharing     SharingConfig `yaml:"sharing"`
	Vault       VaultConfig   `yaml:"vault"`
	Archive     ArchiveConfig `yaml:"archive"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
