package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup.
type Config struct {
	App struct {
		Port            string `mapstructure:"port"`
		Env             string `mapstructure:"env"`
		ReadTimeout     int    `mapstructure:"readTimeout"`
		WriteTimeout    int    `mapstructure:"writeTimeout"`
		ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
	} `mapstructure:"app"`
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Stripe struct {
		APIKey        string `mapstructure:"apiKey"`
		WebhookSecret string `mapstructure:"webhookSecret"`
	} `mapstructure:"stripe"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
	} `mapstructure:"auth"`
	Providers struct {
		Chat struct {
			BaseURL string `mapstructure:"baseUrl"`
			APIKey  string `mapstructure:"apiKey"`
			Model   string `mapstructure:"model"`
		} `mapstructure:"chat"`
		Image struct {
			BaseURL string `mapstructure:"baseUrl"`
			APIKey  string `mapstructure:"apiKey"`
			Model   string `mapstructure:"model"`
		} `mapstructure:"image"`
		Video struct {
			BaseURL string `mapstructure:"baseUrl"`
			APIKey  string `mapstructure:"apiKey"`
		} `mapstructure:"video"`
		Music struct {
			BaseURL string `mapstructure:"baseUrl"`
			APIKey  string `mapstructure:"apiKey"`
		} `mapstructure:"music"`
	} `mapstructure:"providers"`
	Limits struct {
		FreeGenerations int `mapstructure:"freeGenerations"`
	} `mapstructure:"limits"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

// LoadConfig reads the config file and environment. Outside production
// a .env file at the given path seeds the environment first.
func LoadConfig(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.readTimeout", 15)
	// The write timeout must outlast the music polling budget (60
	// attempts at 5s) plus submit time, or the response gets cut off
	// after the composition already completed.
	viper.SetDefault("app.writeTimeout", 330)
	viper.SetDefault("app.shutdownTimeout", 30)
	viper.SetDefault("limits.freeGenerations", 12)
	viper.SetDefault("logging.level", "info")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
