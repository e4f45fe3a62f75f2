package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDisk  = "disk"
	StorageMinIO = "minio"
	StorageS3    = "s3"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Upload    UploadConfig
	Storage   StorageConfig
	Admin     AdminConfig
	Keycloak  KeycloakConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig: an empty URI selects the in-memory store.
type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// UploadConfig bounds image uploads. MaxBytes is the per-image limit;
// MaxMemory is how much of a multipart body is buffered before spilling to disk.
type UploadConfig struct {
	MaxBytes  int64
	MaxMemory int64
}

type StorageConfig struct {
	Driver string
	Dir    string
	MinIO  MinIOConfig
	S3     S3Config
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// AdminConfig configures HS256 admin bearer tokens.
type AdminConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type KeycloakConfig struct {
	URL       string
	Realm     string
	ClientID  string
	AdminRole string
}

// Issuer returns the realm issuer URL.
func (k KeycloakConfig) Issuer() string {
	return strings.TrimRight(k.URL, "/") + "/realms/" + k.Realm
}

type CORSConfig struct {
	AllowedOrigin string
}

// AdminAuthEnabled reports whether any admin token verifier is configured.
func (c *Config) AdminAuthEnabled() bool {
	return c.Admin.JWTSecret != "" || (c.Keycloak.URL != "" && c.Keycloak.Realm != "" && c.Keycloak.ClientID != "")
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("MONGODB_DATABASE", "testimonials")
	viper.SetDefault("MONGODB_COLLECTION", "testimonials")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 0.2)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	viper.SetDefault("UPLOAD_MAX_MEMORY", 8<<20)
	viper.SetDefault("STORAGE_DRIVER", StorageDisk)
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MINIO_BUCKET", "testimonials")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("ADMIN_TOKEN_TTL", 720)
	viper.SetDefault("KEYCLOAK_ADMIN_ROLE", "testimonials-admin")
	viper.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  time.Duration(viper.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(viper.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:        viper.GetString("MONGODB_URI"),
			Database:   viper.GetString("MONGODB_DATABASE"),
			Collection: viper.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Upload: UploadConfig{
			MaxBytes:  viper.GetInt64("UPLOAD_MAX_BYTES"),
			MaxMemory: viper.GetInt64("UPLOAD_MAX_MEMORY"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE_DRIVER"))),
			Dir:    viper.GetString("UPLOAD_DIR"),
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
			},
			S3: S3Config{
				Region:    viper.GetString("S3_REGION"),
				Bucket:    viper.GetString("S3_BUCKET"),
				AccessKey: viper.GetString("S3_ACCESS_KEY"),
				SecretKey: viper.GetString("S3_SECRET_KEY"),
				Endpoint:  viper.GetString("S3_ENDPOINT"),
			},
		},
		Admin: AdminConfig{
			JWTSecret: viper.GetString("ADMIN_JWT_SECRET"),
			TokenTTL:  time.Duration(viper.GetInt("ADMIN_TOKEN_TTL")) * time.Minute,
		},
		Keycloak: KeycloakConfig{
			URL:       viper.GetString("KEYCLOAK_URL"),
			Realm:     viper.GetString("KEYCLOAK_REALM"),
			ClientID:  viper.GetString("KEYCLOAK_CLIENT_ID"),
			AdminRole: viper.GetString("KEYCLOAK_ADMIN_ROLE"),
		},
		CORS: CORSConfig{
			AllowedOrigin: viper.GetString("CORS_ALLOWED_ORIGIN"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}
	switch c.Storage.Driver {
	case StorageDisk:
		if c.Storage.Dir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the disk storage driver")
		}
	case StorageMinIO:
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio storage driver")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want disk, minio or s3)", c.Storage.Driver)
	}
	if c.Admin.JWTSecret != "" && len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("ADMIN_JWT_SECRET must be at least 32 bytes")
	}
	return nil
}
