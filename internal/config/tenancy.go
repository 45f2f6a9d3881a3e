package config

import (
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultStorageLimit is the per-organization quota in bytes (100 MiB).
const DefaultStorageLimit int64 = 104857600

// TenancyConfig holds the tenant rules that operators may change without a restart.
type TenancyConfig struct {
	ReservedSubdomains  []string `mapstructure:"reservedSubdomains"`
	DefaultStorageLimit int64    `mapstructure:"defaultStorageLimit"`
	DefaultTimezone     string   `mapstructure:"defaultTimezone"`
	AdminLandingPath    string   `mapstructure:"adminLandingPath"`
	LoginPath           string   `mapstructure:"loginPath"`
}

func DefaultTenancyConfig() TenancyConfig {
	return TenancyConfig{
		ReservedSubdomains:  []string{"app", "www", "api", "admin", "mail", "static", "sites", "dashboard"},
		DefaultStorageLimit: DefaultStorageLimit,
		DefaultTimezone:     "Europe/Stockholm",
		AdminLandingPath:    "/dashboard",
		LoginPath:           "/login",
	}
}

// IsReserved reports whether a subdomain is held back for platform hosts.
func (c TenancyConfig) IsReserved(subdomain string) bool {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	for _, reserved := range c.ReservedSubdomains {
		if strings.EqualFold(strings.TrimSpace(reserved), subdomain) {
			return true
		}
	}
	return false
}

type TenancyHolder struct {
	current atomic.Value // holds TenancyConfig
}

// NewStaticTenancyHolder wraps a fixed config, mainly for tests.
func NewStaticTenancyHolder(cfg TenancyConfig) *TenancyHolder {
	holder := &TenancyHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewTenancyHolder reads fornet.yml and watches it for changes.
func NewTenancyHolder(cfg Config, log *zap.Logger) (*TenancyHolder, error) {
	log = log.Named("config.tenancy")
	v := viper.New()

	if path := strings.TrimSpace(cfg.TenancyConfigPath); path != "" {
		v.SetConfigFile(filepath.Clean(path))
	} else {
		v.SetConfigName("fornet")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/fornet")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FORNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTenancyConfig()
	v.SetDefault("tenancy.reservedSubdomains", defaults.ReservedSubdomains)
	v.SetDefault("tenancy.defaultStorageLimit", defaults.DefaultStorageLimit)
	v.SetDefault("tenancy.defaultTimezone", defaults.DefaultTimezone)
	v.SetDefault("tenancy.adminLandingPath", defaults.AdminLandingPath)
	v.SetDefault("tenancy.loginPath", defaults.LoginPath)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var tenancy TenancyConfig
	if err := v.UnmarshalKey("tenancy", &tenancy); err != nil {
		return nil, err
	}
	if err := validateTenancyConfig(tenancy); err != nil {
		return nil, err
	}

	holder := NewStaticTenancyHolder(tenancy)
	if !fileLoaded {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TenancyConfig
		if err := v.UnmarshalKey("tenancy", &updated); err != nil {
			log.Warn("tenancy reload failed", zap.Error(err))
			return
		}
		if err := validateTenancyConfig(updated); err != nil {
			log.Warn("invalid tenancy config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("tenancy config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

func (h *TenancyHolder) Get() TenancyConfig {
	return h.current.Load().(TenancyConfig)
}

func validateTenancyConfig(cfg TenancyConfig) error {
	if cfg.DefaultStorageLimit <= 0 {
		return errors.New("tenancy.defaultStorageLimit must be positive")
	}
	if strings.TrimSpace(cfg.DefaultTimezone) == "" {
		return errors.New("tenancy.defaultTimezone cannot be empty")
	}
	if !strings.HasPrefix(cfg.AdminLandingPath, "/") || !strings.HasPrefix(cfg.LoginPath, "/") {
		return errors.New("tenancy paths must be absolute")
	}
	return nil
}
