package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultDaysToLoad = 5

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Loader   LoaderConfig   `yaml:"loader"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address           string `yaml:"address" validate:"required"`
	SwaggerDir        string `yaml:"swagger_dir"`
	LoadRatePerMinute int    `yaml:"load_rate_per_minute" validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"omitempty,oneof=postgres sqlite"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// Path is the SQLite file, used when Driver is sqlite.
	Path string `yaml:"path"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	LoadRequestsTopic string   `yaml:"load_requests_topic"`
	LoadEventsTopic   string   `yaml:"load_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

type LoaderConfig struct {
	DaysToLoad      int    `yaml:"days_to_load" validate:"gte=0"`
	MileagePath     string `yaml:"mileage_path"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds" validate:"gte=0"`
}

type WorkerConfig struct {
	PopulateOnStart bool `yaml:"populate_on_start"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// preset so an explicit days_to_load: 0 survives decoding
	cfg := Config{Loader: LoaderConfig{DaysToLoad: DefaultDaysToLoad}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if v := os.Getenv("NUM_DAYS_TO_LOAD"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NUM_DAYS_TO_LOAD %q: %w", v, err)
		}
		cfg.Loader.DaysToLoad = days
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Loader.CacheTTLSeconds == 0 {
		c.Loader.CacheTTLSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
