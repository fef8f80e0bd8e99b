package config

import (
	"strings"

	"github.com/spf13/viper"

	"hackhub/internal/logging"
)

type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	CookieSecure    bool
	AdminSetupToken string

	Minio MinioConfig
}

// MinioConfig points at the object storage bucket backing event galleries.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseTLS    bool
	PublicURL string
}

// Load reads config.yaml if present and lets environment variables override
// every key (DATABASE_URL, JWT_SECRET, PORT, ...).
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Warnf("no config file, relying on environment: %v", err)
	}

	viper.SetDefault("port", "8080")
	viper.SetDefault("minio.bucket", "event-gallery")

	cfg := &Config{
		DatabaseURL:     viper.GetString("database_url"),
		JWTSecret:       viper.GetString("jwt_secret"),
		Port:            viper.GetString("port"),
		CookieSecure:    viper.GetBool("cookie_secure"),
		AdminSetupToken: viper.GetString("admin_setup_token"),
		Minio: MinioConfig{
			Endpoint:  viper.GetString("minio.endpoint"),
			AccessKey: viper.GetString("minio.access_key"),
			SecretKey: viper.GetString("minio.secret_key"),
			Bucket:    viper.GetString("minio.bucket"),
			UseTLS:    viper.GetBool("minio.use_tls"),
			PublicURL: viper.GetString("minio.public_url"),
		},
	}

	if cfg.DatabaseURL == "" {
		logging.Log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		logging.Log.Fatal("JWT_SECRET is required")
	}

	return cfg
}
