// Package config loads service configuration from configs/config.yml,
// an optional .env file, and ECOROUTE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "ECOROUTE"

// Broker kinds.
const (
	BrokerMQTT = "mqtt"
	BrokerNATS = "nats"
	BrokerNone = "none"
)

type Config struct {
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Store     StoreConfig     `mapstructure:"store"`
	Staleness StalenessConfig `mapstructure:"staleness"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Ordering  OrderingConfig  `mapstructure:"ordering"`
	Geometry  GeometryConfig  `mapstructure:"geometry"`
	Events    EventsConfig    `mapstructure:"events"`
	WS        WSConfig        `mapstructure:"ws"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig holds the fallback center used for bins reported without
// a usable position.
type StoreConfig struct {
	DefaultLat float64 `mapstructure:"default_lat"`
	DefaultLng float64 `mapstructure:"default_lng"`
}

type StalenessConfig struct {
	OfflineAfter time.Duration `mapstructure:"offline_after"`
	Tick         time.Duration `mapstructure:"tick"`
}

type BrokerConfig struct {
	Kind           string        `mapstructure:"kind"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	TLS            bool          `mapstructure:"tls"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Topic          string        `mapstructure:"topic"`
	ClientIDPrefix string        `mapstructure:"client_id_prefix"`
	KeepAlive      time.Duration `mapstructure:"keepalive"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	// URL is used by the NATS subscriber, e.g. nats://localhost:4222.
	URL string `mapstructure:"url"`
}

type OrderingConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeometryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Profile string        `mapstructure:"profile"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type EventsConfig struct {
	Capacity int `mapstructure:"capacity"`
}

type WSConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 40*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.default_lat", -1.1145)
	v.SetDefault("store.default_lng", 36.6620)

	v.SetDefault("staleness.offline_after", 30*time.Second)
	v.SetDefault("staleness.tick", 5*time.Second)

	v.SetDefault("broker.kind", BrokerMQTT)
	v.SetDefault("broker.host", "localhost")
	v.SetDefault("broker.port", 1883)
	v.SetDefault("broker.tls", false)
	v.SetDefault("broker.username", "")
	v.SetDefault("broker.password", "")
	v.SetDefault("broker.topic", "ecoroute/updates")
	v.SetDefault("broker.client_id_prefix", "ecoroute_srv_")
	v.SetDefault("broker.keepalive", 60*time.Second)
	v.SetDefault("broker.dial_timeout", 10*time.Second)
	v.SetDefault("broker.url", "nats://localhost:4222")

	v.SetDefault("ordering.api_key", "")
	v.SetDefault("ordering.model", "gemini-3-flash-preview")
	v.SetDefault("ordering.timeout", 20*time.Second)

	v.SetDefault("geometry.base_url", "https://router.project-osrm.org")
	v.SetDefault("geometry.profile", "driving")
	v.SetDefault("geometry.timeout", 10*time.Second)

	v.SetDefault("events.capacity", 1024)
	v.SetDefault("ws.interval", 5*time.Second)
}

// Load reads configuration. Missing files are not an error: defaults and
// environment variables are enough to start. dirs are searched for
// config.yml; when empty, "configs" is used.
func Load(dirs ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if len(dirs) == 0 {
		dirs = []string{"configs"}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// The dashboard historically read the key from API_KEY.
	if cfg.Ordering.APIKey == "" {
		cfg.Ordering.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
