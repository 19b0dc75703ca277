package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey string `mapstructure:"secretKey"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Password          string `mapstructure:"password"`
	Port              string `mapstructure:"port"`
	Username          string `mapstructure:"username"`
	DB                string `mapstructure:"db"`
	SSLMODE           string `mapstructure:"SSLMODE"`
	MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type DatasetConfig struct {
	Source           string `mapstructure:"source" validate:"oneof=file postgres"`
	AirportsPath     string `mapstructure:"airportsPath"`
	RoutesPath       string `mapstructure:"routesPath"`
	DestinationsPath string `mapstructure:"destinationsPath"`
	Workers          int    `mapstructure:"workers" validate:"gte=1,lte=64"`
	ClimateBackfill  bool   `mapstructure:"climateBackfill"`
}

type AgentConfig struct {
	Provider     string        `mapstructure:"provider" validate:"oneof=gemini keyword"`
	Model        string        `mapstructure:"model"`
	Temperature  float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens    int32         `mapstructure:"maxTokens" validate:"gt=0"`
	SessionTTL   time.Duration `mapstructure:"sessionTTL" validate:"gt=0"`
	SessionStore string        `mapstructure:"sessionStore" validate:"oneof=memory redis"`
	APIKey       string        `mapstructure:"apiKey"`
}

type ClimateConfig struct {
	BaseURL  string        `mapstructure:"baseURL" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	CacheTTL time.Duration `mapstructure:"cacheTTL" validate:"gt=0"`
}

type Config struct {
	Mode   string `mapstructure:"mode" validate:"oneof=development production test"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort" validate:"required"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout" validate:"gt=0"`
	} `mapstructure:"server"`
	Metrics struct {
		Port string `mapstructure:"port" validate:"required"`
	} `mapstructure:"metrics"`
	Repositories struct {
		Postgres PostgresConfig `mapstructure:"postgres"`
		Redis    RedisConfig    `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Climate ClimateConfig `mapstructure:"climate"`
	JWT     JWTConfig     `mapstructure:"jwt"`
}

// InitConfig reads config.yml from the usual locations, falling back to the
// embedded copy. Environment variables override file values, with dots in the
// key replaced by underscores (DATASET_SOURCE, AGENT_APIKEY, ...).
func InitConfig() (Config, error) {
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}
	return load(v)
}

// Load parses config YAML from data; used by tools and tests that do not read
// from the filesystem.
func Load(data []byte) (Config, error) {
	v := viper.New()
	v.SetConfigType("yml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Gemini key is usually provided under its conventional name.
	_ = v.BindEnv("agent.apiKey", "AGENT_APIKEY", "GOOGLE_GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks field constraints plus the cross-field requirements of the
// selected providers.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Dataset.Source == "file" && (c.Dataset.AirportsPath == "" || c.Dataset.RoutesPath == "") {
		return fmt.Errorf("invalid config: dataset.airportsPath and dataset.routesPath are required for the file source")
	}
	if c.Dataset.Source == "postgres" && c.Repositories.Postgres.Host == "" {
		return fmt.Errorf("invalid config: repositories.postgres.host is required for the postgres source")
	}
	if c.Agent.SessionStore == "redis" && c.Repositories.Redis.Addr == "" {
		return fmt.Errorf("invalid config: repositories.redis.addr is required for the redis session store")
	}
	return nil
}
