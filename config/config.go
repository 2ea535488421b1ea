package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Vision VisionConfig
	S3     S3Config
	Debug  bool
}

type ServerConfig struct {
	Host string
	Port string
}

type VisionConfig struct {
	APIKey   string
	Model    string
	Timeout  time.Duration
	PoolSize int
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
}

// Enabled reports whether object storage has been configured at all.
// The photo routes answer 503 when it has not.
func (c *S3Config) Enabled() bool {
	return c.BucketName != ""
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	viper.SetDefault("VISION_TIMEOUT_SECONDS", 60)
	viper.SetDefault("VISION_POOL_SIZE", 4)
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_ACCESS_KEY_ID", "")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_BUCKET_NAME", "")
	viper.SetDefault("DEBUG", false)

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		Vision: VisionConfig{
			APIKey:   viper.GetString("GEMINI_API_KEY"),
			Model:    viper.GetString("GEMINI_MODEL"),
			Timeout:  time.Duration(viper.GetInt("VISION_TIMEOUT_SECONDS")) * time.Second,
			PoolSize: viper.GetInt("VISION_POOL_SIZE"),
		},
		S3: S3Config{
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			Region:          viper.GetString("S3_REGION"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
		},
		Debug: viper.GetBool("DEBUG"),
	}

	return cfg, nil
}
