package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	ProcessedBucket string `mapstructure:"processed_bucket"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// PipelineConfig carries the transform and query knobs. Defaults match the
// production values: an 800x800 bounding box, JPEG quality 90, and a
// 50-record scan window for global statistics.
type PipelineConfig struct {
	MaxWidth            int    `mapstructure:"max_width"`
	MaxHeight           int    `mapstructure:"max_height"`
	JPEGQuality         int    `mapstructure:"jpeg_quality"`
	ContentCollection   string `mapstructure:"content_collection"`
	AnalyticsCollection string `mapstructure:"analytics_collection"`
	GlobalScanLimit     int    `mapstructure:"global_scan_limit"`
}

// AuthConfig configures the stubbed identity extraction: requests without a
// valid bearer token are attributed to DefaultUser.
type AuthConfig struct {
	Secret      string `mapstructure:"secret"`
	DefaultUser string `mapstructure:"default_user"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: pipeline.jpeg_quality -> PIPELINE_JPEG_QUALITY
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "contentflow")
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.processed_bucket", "processed-content-bucket")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("pipeline.max_width", 800)
	viper.SetDefault("pipeline.max_height", 800)
	viper.SetDefault("pipeline.jpeg_quality", 90)
	viper.SetDefault("pipeline.content_collection", "content_metadata")
	viper.SetDefault("pipeline.analytics_collection", "user_analytics")
	viper.SetDefault("pipeline.global_scan_limit", 50)
	viper.SetDefault("auth.default_user", "example-user")

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
