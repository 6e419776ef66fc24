package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REPORT_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, 1, cfg.ReportWorkers)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, "Australia/Sydney", cfg.Location().String())
	assert.Equal(t, time.Hour, cfg.FixtureSyncInterval)
}

func TestLoadNormalizesLegacyPostgresScheme(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/tips")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@localhost:5432/tips", cfg.DatabaseURL)
	assert.True(t, cfg.UsesPostgres())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REPORT_WORKERS", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REPORT_WORKERS", "2")
	t.Setenv("TIPPING_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_LIST", " a, ,b ")
	assert.Equal(t, []string{"a", "b"}, envList("X_LIST", nil))

	t.Setenv("X_DUR", "90s")
	assert.Equal(t, 90*time.Second, envDuration("X_DUR", time.Minute))

	t.Setenv("X_DUR", "soon")
	assert.Equal(t, time.Minute, envDuration("X_DUR", time.Minute))
}
