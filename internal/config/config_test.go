package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("UPLOAD_MAX_BYTES", "")
	t.Setenv("ADMIN_JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "", cfg.MongoDB.URI)
	require.Equal(t, StorageDisk, cfg.Storage.Driver)
	require.Equal(t, int64(5<<20), cfg.Upload.MaxBytes)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.False(t, cfg.AdminAuthEnabled())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "testimonials_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("STORAGE_DRIVER", "MinIO")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("ADMIN_JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "testimonials_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, int64(1024), cfg.Upload.MaxBytes)
	require.Equal(t, StorageMinIO, cfg.Storage.Driver)
	require.True(t, cfg.AdminAuthEnabled())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Upload:  UploadConfig{MaxBytes: 1},
			Storage: StorageConfig{Driver: StorageDisk, Dir: "uploads"},
		}
	}
	require.NoError(t, base().Validate())

	c := base()
	c.Upload.MaxBytes = 0
	require.Error(t, c.Validate())

	c = base()
	c.Storage.Driver = "ftp"
	require.Error(t, c.Validate())

	c = base()
	c.Storage.Driver = StorageS3
	require.Error(t, c.Validate())

	c = base()
	c.Admin.JWTSecret = "short"
	require.Error(t, c.Validate())
}

func TestKeycloakIssuer(t *testing.T) {
	k := KeycloakConfig{URL: "https://sso.example.com/", Realm: "acme"}
	require.Equal(t, "https://sso.example.com/realms/acme", k.Issuer())
}
