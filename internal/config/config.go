// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageWebDAV = "webdav"
	StorageMemory = "memory"
)

// Config holds all runtime settings.
type Config struct {
	Port string

	StorageBackend string
	WebDAVBase     string
	WebDAVUsername string
	WebDAVPassword string
	StorageTimeout time.Duration
	SerializeIndex bool
	CatalogPath    string

	AdminUser string
	AdminPass string
	SecretKey string
	AuthDSN   string

	RabbitMQURL string
	LogMode     string
	LogFile     string
}

// Load reads .env (if present, overriding the process environment) and the
// environment into a Config. Missing required values are an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing .env is normal outside local development.
		_ = godotenv.Overload(f)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "")
	v.SetDefault("FLASK_RUN_PORT", "5000")
	v.SetDefault("STORAGE_BACKEND", StorageWebDAV)
	v.SetDefault("STORAGE_TIMEOUT", "15s")
	v.SetDefault("ORDER_INDEX_SERIALIZE", false)
	v.SetDefault("CATALOG_PATH", "products.json")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASS", "admin123")
	v.SetDefault("APP_SECRET_KEY", "clothshop-mini-dev")
	v.SetDefault("LOG_MODE", "development")
	v.AutomaticEnv()
	for _, key := range []string{"NEXTCLOUD_WEBDAV_BASE", "NEXTCLOUD_USERNAME", "NEXTCLOUD_APP_PASSWORD", "AUTH_DSN", "RABBITMQ_URL", "LOG_FILE"} {
		_ = v.BindEnv(key)
	}
	return v
}

// FromViper builds a Config from v and checks required settings.
func FromViper(v *viper.Viper) (*Config, error) {
	port := v.GetString("PORT")
	if port == "" {
		port = v.GetString("FLASK_RUN_PORT")
	}
	cfg := &Config{
		Port:           port,
		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		WebDAVBase:     v.GetString("NEXTCLOUD_WEBDAV_BASE"),
		WebDAVUsername: v.GetString("NEXTCLOUD_USERNAME"),
		WebDAVPassword: v.GetString("NEXTCLOUD_APP_PASSWORD"),
		StorageTimeout: v.GetDuration("STORAGE_TIMEOUT"),
		SerializeIndex: v.GetBool("ORDER_INDEX_SERIALIZE"),
		CatalogPath:    v.GetString("CATALOG_PATH"),
		AdminUser:      v.GetString("ADMIN_USER"),
		AdminPass:      v.GetString("ADMIN_PASS"),
		SecretKey:      v.GetString("APP_SECRET_KEY"),
		AuthDSN:        v.GetString("AUTH_DSN"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		LogMode:        v.GetString("LOG_MODE"),
		LogFile:        v.GetString("LOG_FILE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or invalid required setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageBackend {
	case StorageWebDAV:
		required := []struct{ name, val string }{
			{"NEXTCLOUD_WEBDAV_BASE", c.WebDAVBase},
			{"NEXTCLOUD_USERNAME", c.WebDAVUsername},
			{"NEXTCLOUD_APP_PASSWORD", c.WebDAVPassword},
		}
		for _, r := range required {
			if r.val == "" {
				errs = append(errs, fmt.Errorf("%s is required", r.name))
			}
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("APP_SECRET_KEY is required"))
	}
	if c.AdminUser == "" || c.AdminPass == "" {
		errs = append(errs, errors.New("ADMIN_USER and ADMIN_PASS are required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	return errors.Join(errs...)
}

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return "0.0.0.0:" + c.Port
}
