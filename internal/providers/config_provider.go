package providers

import (
	"eigenkey/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("access.validityDays", 30)
	v.SetDefault("access.keysFile", "keys.json")
	v.SetDefault("sharing.deviceThreshold", 2)
	v.SetDefault("sharing.timeWindow", 24*time.Hour)
	v.SetDefault("vault.mount", "secret")
	v.SetDefault("vault.path", "eigenkey/access_keys")
	v.SetDefault("vault.field", "keys")
	v.SetDefault("vault.timeout", 5*time.Second)
	v.SetDefault("archive.interval", time.Hour)
	v.SetDefault("archive.retention", 7*24*time.Hour)
	v.SetDefault("cache.ttl", 30*time.Second)

	v.BindEnv("logger.level", "EIGENKEY_LOG_LEVEL")
	v.BindEnv("access.keysFile", "EIGENKEY_KEYS_FILE")
	v.BindEnv("vault.enabled", "EIGENKEY_VAULT_ENABLED")
	v.BindEnv("vault.address", "EIGENKEY_VAULT_ADDR", "VAULT_ADDR")
	v.BindEnv("vault.token", "EIGENKEY_VAULT_TOKEN", "VAULT_TOKEN")
	v.BindEnv("sharing.deviceThreshold", "EIGENKEY_DEVICE_THRESHOLD")
	v.BindEnv("metrics.enabled", "EIGENKEY_METRICS_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "EigenKey"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
