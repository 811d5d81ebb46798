// Package settings loads and validates the process-wide configuration
// surface: server/admin bind addresses, arena sizing, logging, and the
// default snapshot path.
package settings

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration surface.
type Config struct {
	Server   Server   `yaml:"server"`
	Admin    Admin    `yaml:"admin"`
	Arena    Arena    `yaml:"arena"`
	Logger   Logger   `yaml:"logger"`
	Snapshot Snapshot `yaml:"snapshot"`
}

// Server is the TCP listener configuration for the wire protocol.
type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required,min=1,max=65535"`
}

// Admin is the read-only debug/metrics HTTP API configuration.
type Admin struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" validate:"min=0,max=65535"`
}

// Arena sizes the single pre-allocated byte buffer and its sub-regions.
type Arena struct {
	TotalMemorySize int `yaml:"total_memory_size" validate:"required,gt=0"`
	IndexSize       int `yaml:"index_size" validate:"required,gt=0,ltfield=TotalMemorySize"`
	CacheSize       int `yaml:"cache_size" validate:"required,gt=0"`
}

// Logger is the structured logging configuration.
type Logger struct {
	LogLevel    string `yaml:"log_level" validate:"required,oneof=debug info warn error"`
	FileLogName string `yaml:"file_log_name"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAge      int    `yaml:"max_age"`
	MaxSize     int    `yaml:"max_size"`
	Compress    bool   `yaml:"compress"`
}

// Snapshot configures the default save/load path used by the startup and
// shutdown hooks; requests can still address any path explicitly.
type Snapshot struct {
	DefaultPath string `yaml:"default_path"`
}

// Default returns the documented defaults: PORT 17878, ADMIN_PORT 17879,
// TOTAL_MEMORY_SIZE 0x00FFFFFF, INDEX_SIZE 0x0000FFFF, CACHE_SIZE 500.
func Default() Config {
	return Config{
		Server: Server{Host: "0.0.0.0", Port: 17878},
		Admin:  Admin{Enabled: true, Port: 17879},
		Arena: Arena{
			TotalMemorySize: 0x00FFFFFF,
			IndexSize:       0x0000FFFF,
			CacheSize:       500,
		},
		Logger: Logger{
			LogLevel:    "info",
			FileLogName: "arenakv.log",
			MaxBackups:  3,
			MaxAge:      28,
			MaxSize:     100,
			Compress:    true,
		},
		Snapshot: Snapshot{DefaultPath: "arenakv.snapshot"},
	}
}

// Load builds a Config from Default(), overlaying path's YAML contents
// (skipped if path is empty) and then the PORT/ADMIN_PORT environment
// variables, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			cfg.Server.Port = v
		}
	}
	if p := os.Getenv("ADMIN_PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			cfg.Admin.Port = v
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
