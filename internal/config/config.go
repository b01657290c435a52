// Package config loads client settings from .env, an optional YAML file
// and TOPPAN_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Assets  AssetsConfig  `mapstructure:"assets"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Journal JournalConfig `mapstructure:"journal"`
	Log     LogConfig     `mapstructure:"log"`
	Player  PlayerConfig  `mapstructure:"player"`
	Table   TableConfig   `mapstructure:"table"`
}

type ServerConfig struct {
	URL string `mapstructure:"url"`
}

type AssetsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Origin  string `mapstructure:"origin"` // where relative asset paths are fetched from
	Base    string `mapstructure:"base"`
	Dir     string `mapstructure:"dir"` // served to viewers when set
}

type ViewerConfig struct {
	Listen string `mapstructure:"listen"` // empty disables the viewer API
}

type JournalConfig struct {
	DSN string `mapstructure:"dsn"`
}

// DefaultLogFile keeps log output off the terminal the table is drawn on.
const DefaultLogFile = "toppan-client.log"

type LogConfig struct {
	Level string `mapstructure:"level"`
	Dev   bool   `mapstructure:"dev"`
	File  string `mapstructure:"file"` // "stderr" logs to the terminal
}

type PlayerConfig struct {
	Name string `mapstructure:"name"`
	Room string `mapstructure:"room"` // joined at start; empty creates a room
}

type TableConfig struct {
	ContainerWidth float64 `mapstructure:"container_width"`
	MaxPending     int     `mapstructure:"max_pending"`
}

var (
	ErrServerURL  = errors.New("server url must be ws:// or wss://")
	ErrAssetURL   = errors.New("asset origin must be an absolute http(s) url")
	ErrBadWidth   = errors.New("container width must be positive")
	ErrBadPending = errors.New("max pending must be positive")
)

func defaults(v *viper.Viper) {
	v.SetDefault("server.url", "ws://localhost:8080/ws")
	v.SetDefault("assets.enabled", true)
	v.SetDefault("assets.origin", "http://localhost:8080")
	v.SetDefault("assets.base", "/assets/tiles/")
	v.SetDefault("assets.dir", "")
	v.SetDefault("viewer.listen", "127.0.0.1:8090")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("player.name", "Player")
	v.SetDefault("player.room", "")
	v.SetDefault("table.container_width", 480)
	v.SetDefault("table.max_pending", 1024)
}

// Load reads configuration. path may be empty; a missing .env is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	defaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TOPPAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The asset base keeps its older variable name as a fallback.
	if err := v.BindEnv("assets.base", "TOPPAN_ASSETS_BASE", "TILE_ASSET_BASE"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Player.Name = strings.TrimSpace(cfg.Player.Name)
	cfg.Player.Room = strings.TrimSpace(cfg.Player.Room)
	return &cfg, nil
}

// Validate reports every bad value at once.
func (c *Config) Validate() error {
	var err error
	if u, perr := url.Parse(c.Server.URL); perr != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrServerURL, c.Server.URL))
	}
	if c.Assets.Enabled {
		if u, perr := url.Parse(c.Assets.Origin); perr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			err = multierr.Append(err, fmt.Errorf("%w: %q", ErrAssetURL, c.Assets.Origin))
		}
	}
	if c.Table.ContainerWidth <= 0 {
		err = multierr.Append(err, ErrBadWidth)
	}
	if c.Table.MaxPending <= 0 {
		err = multierr.Append(err, ErrBadPending)
	}
	return err
}
