package config_test

import (
	"testing"

	"github.com/opsdesk/staffcentre/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("RECONCILE_INTERVAL", "30m")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "./data/staffcentre.db", cfg.DBPath)
	assert.Equal(t, "staff-holidays", cfg.HolidayCalendarID)
	assert.Equal(t, "30m0s", cfg.ReconcileInterval.String())
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoad_RejectsBadInterval(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RECONCILE_INTERVAL", "soon")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECONCILE_INTERVAL")
}
