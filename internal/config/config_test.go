package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://api:pw@localhost:5432/clinic")
	t.Setenv("JWT_SECRET", "0123456789abcdef-long-enough")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", c.Env)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, 24*time.Hour, c.JWT.TTL)
	assert.Equal(t, "@hourly", c.Jobs.CompleteAppointments)
	assert.Equal(t, "file://migrations", c.DB.MigrationsPath)
}

func TestLoadMigrationsPath(t *testing.T) {
	setRequired(t)

	t.Setenv("DB_MIGRATIONS_PATH", "db/schema")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file://db/schema", c.DB.MigrationsPath)

	t.Setenv("DB_MIGRATIONS_PATH", "file:///srv/migrations")
	c, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "file:///srv/migrations", c.DB.MigrationsPath)
}

func TestLoadMissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef-long-enough")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBuildsURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef-long-enough")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "api")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "clinic")

	c, err := Load()
	require.NoError(t, err)
	assert.Contains(t, c.DB.URL, "postgres://api:pw@db.internal:5432/clinic")
}

func TestLoadShortSecretRejected(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://api:pw@localhost:5432/clinic")
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadTelegramNeedsChatID(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBadTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL", "sometime")

	_, err := Load()
	assert.Error(t, err)
}
