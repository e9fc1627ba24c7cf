package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_URL", "")
	t.Setenv("SUPPRESS_DOWNSTREAM_ERRORS", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http://localhost:8080", cfg.AppURL)
	assert.Equal(t, "http://localhost:8080/storage", cfg.StoragePublicURL)
	assert.Equal(t, "profile-avatars", cfg.AvatarFolder)
	assert.Equal(t, int64(5*1024*1024), cfg.AvatarMaxBytes)
	assert.False(t, cfg.SuppressDownstreamErrors)
	assert.True(t, cfg.AvatarKeepExtension())
}

func TestLoad_ProductionSuppressesByDefault(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SUPPRESS_DOWNSTREAM_ERRORS", "")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.SuppressDownstreamErrors)
}

func TestLoad_SuppressionOverride(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SUPPRESS_DOWNSTREAM_ERRORS", "false")

	assert.False(t, Load().SuppressDownstreamErrors)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("VERIFY_LINK_TTL", "soon")
	t.Setenv("STORAGE_DROP_EXTENSION", "maybe")
	t.Setenv("AVATAR_MAX_BYTES", "big")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.VerifyLinkTTL)
	assert.True(t, cfg.AvatarKeepExtension())
	assert.Equal(t, int64(5*1024*1024), cfg.AvatarMaxBytes)
}

func TestLoad_TrimsTrailingSlashes(t *testing.T) {
	t.Setenv("APP_URL", "https://api.example.com/")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example.com/public/")

	cfg := Load()
	assert.Equal(t, "https://api.example.com", cfg.AppURL)
	assert.Equal(t, "https://cdn.example.com/public", cfg.StoragePublicURL)
}

func TestCSVHelpers(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.test, ,https://b.test ", ElasticsearchAddrs: ""}
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}
