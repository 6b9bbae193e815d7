package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_USER", "annotator")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "annotations")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("POPULATION_FILE", "/data/userInquiry.txt")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://annotator.example.com")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "annotator", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "annotations", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "/data/userInquiry.txt", cfg.PopulationFile)
	assert.Equal(t, []string{"http://localhost:5173", "https://annotator.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	for _, key := range []string{
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD",
		"POSTGRES_DB", "DB_SSL_MODE", "JWT_SECRET", "POPULATION_FILE",
		"MIGRATIONS_DIR", "CORS_ORIGINS", "REDIS_HOST", "REDIS_URL", "EXPORT_BUCKET",
	} {
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "annotator", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.Equal(t, "userInquiry.txt", cfg.PopulationFile)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.False(t, cfg.RedisEnabled())
	assert.Empty(t, cfg.ExportBucket)
}

func TestValidateConfigRejectsMissingSecret(t *testing.T) {
	t.Setenv("ENV", "test")
	cfg := &Config{DBHost: "localhost", DBName: "annotations"}
	assert.Error(t, ValidateConfig(cfg))

	cfg.JWTSecret = "something"
	assert.NoError(t, ValidateConfig(cfg))
}
