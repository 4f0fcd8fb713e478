package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	AWS      AWSConfig
	Models   ModelsConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string // empty disables the prediction journal
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// AWSConfig holds AWS/S3 configuration for s3:// artifact sources
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Endpoint      string
}

// ModelsConfig holds estimator artifact and pipeline configuration
type ModelsConfig struct {
	WingSource     string
	RaySource      string
	RangeVariant   string
	PredictTimeout time.Duration
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "dev")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ACCESS_KEY_ID", "")
	viper.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("WING_MODEL", "model/genesis_wing.json")
	viper.SetDefault("RAY_MODEL", "model/genesis_ray.json")
	viper.SetDefault("RANGE_VARIANT", "A")
	viper.SetDefault("PREDICT_TIMEOUT", "0s")

	// Environment variables override .env file values
	viper.AutomaticEnv()

	env := viper.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev" // Use "dev" to match .env.dev filename
	}

	// Try to read .env file for the current environment
	viper.SetConfigName(".env." + env)
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// Read .env file (ignore error if file doesn't exist)
	_ = viper.ReadInConfig()

	var config Config
	config.Database.URL = viper.GetString("DATABASE_URL")
	config.Server.Port = viper.GetString("PORT")
	config.Server.Env = viper.GetString("ENVIRONMENT")
	config.Server.AllowedOrigins = splitList(viper.GetString("ALLOWED_ORIGINS"))
	config.AWS.Region = viper.GetString("AWS_REGION")
	config.AWS.AccessKeyID = viper.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = viper.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Endpoint = viper.GetString("S3_ENDPOINT")
	config.Models.WingSource = viper.GetString("WING_MODEL")
	config.Models.RaySource = viper.GetString("RAY_MODEL")
	config.Models.RangeVariant = strings.ToUpper(viper.GetString("RANGE_VARIANT"))

	timeout, err := time.ParseDuration(viper.GetString("PREDICT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICT_TIMEOUT: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("invalid PREDICT_TIMEOUT: must not be negative")
	}
	config.Models.PredictTimeout = timeout

	if config.Models.WingSource == "" || config.Models.RaySource == "" {
		return nil, fmt.Errorf("WING_MODEL and RAY_MODEL are required")
	}

	log.Debug().
		Str("environment", config.Server.Env).
		Str("wing", config.Models.WingSource).
		Str("ray", config.Models.RaySource).
		Str("variant", config.Models.RangeVariant).
		Bool("journal", config.Database.URL != "").
		Msg("Configuration loaded")

	return &config, nil
}

// UsesS3 reports whether any artifact must be fetched from object storage
func (c *Config) UsesS3() bool {
	return strings.HasPrefix(c.Models.WingSource, "s3://") || strings.HasPrefix(c.Models.RaySource, "s3://")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
