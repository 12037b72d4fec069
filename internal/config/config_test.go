package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8081", cfg.Server.ChatServicePort)
	assert.Equal(t, "8082", cfg.Server.FeedServicePort)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "pawstogether", cfg.MongoDB.Database)
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAT_SERVICE_PORT", "9999")
	t.Setenv("MONGO_DB", "paws_test")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Server.ChatServicePort)
	assert.Equal(t, "paws_test", cfg.MongoDB.Database)
	assert.Equal(t, 3, cfg.MySQL.MaxOpenConns)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5, cfg.MySQL.MaxIdleConns)
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_USER", "paws")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "pawsdb")

	cfg := Load()
	assert.Equal(t,
		"paws:secret@tcp(db.internal:3307)/pawsdb?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DSN())
}
