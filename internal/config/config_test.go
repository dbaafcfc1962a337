package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sales")
	t.Setenv("UNIVERSAL_KEY", "master-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10*time.Minute, cfg.DeliveryMin)
	assert.Equal(t, 45*time.Minute, cfg.DeliveryMax)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.ScheduleGrace)
	assert.False(t, cfg.ShortenLinks)
}

func TestLoadRequiresKeyAndDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("UNIVERSAL_KEY", "k")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/sales")
	t.Setenv("UNIVERSAL_KEY", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvertedJitterWindow(t *testing.T) {
	setRequired(t)
	t.Setenv("DELIVERY_MIN_MINUTES", "30")
	t.Setenv("DELIVERY_MAX_MINUTES", "10")

	_, err := Load()
	assert.Error(t, err)
}

func TestFormURLFor(t *testing.T) {
	forms := FormURLs{
		Beginner: "https://f/b",
		Coaching: "https://f/c",
	}

	assert.Equal(t, "https://f/b", forms.URLFor(entity.SaleTypeBeginner))
	assert.Equal(t, "https://f/c", forms.URLFor(entity.SaleTypeCoaching))
	assert.Equal(t, "https://f/c", forms.URLFor(entity.SaleTypePosing), "posing shares the coaching form")
	assert.Equal(t, "https://f/c", forms.URLFor(entity.SaleTypeEndo))
	assert.Empty(t, forms.URLFor(entity.SaleTypeNutritionPro))
}
