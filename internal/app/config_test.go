package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

func setRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("CSRF_SECRET", "csrf")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.ListDefaultPageSize)
	assert.Equal(t, []int{10, 20, 50, 100}, cfg.ListPageSizes)
	assert.Equal(t, filters.RetentionDiscard, cfg.Retention())
	assert.Equal(t, 5*time.Minute, cfg.OptionsCacheTTL)
	assert.Equal(t, 2*time.Hour, cfg.PanelStateTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LISTVIEW_RETENTION", "preserve")
	t.Setenv("LISTVIEW_DEFAULT_PAGE_SIZE", "25")
	t.Setenv("LISTVIEW_PAGE_SIZES", "25,50")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, filters.RetentionPreserve, cfg.Retention())
	assert.Equal(t, []int{25, 50}, cfg.ListPageSizes)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	setRequired(t)

	t.Setenv("LISTVIEW_RETENTION", "forever")
	_, err := LoadConfig()
	assert.ErrorIs(t, err, filters.ErrInvalidDefinition)

	t.Setenv("LISTVIEW_RETENTION", "discard")
	t.Setenv("LISTVIEW_DEFAULT_PAGE_SIZE", "15")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, &Config{LogFormat: "json", AppEnv: "production"}).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, &Config{LogFormat: "json", AppEnv: "production"}).Info("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
