package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost user=leasing dbname=leasing")
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, []int{12, 24, 36, 48, 60}, cfg.Offers.AllowedTerms)
	assert.Equal(t, "Konelease Oy", cfg.Lessor.CompanyName)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestTermAllowed(t *testing.T) {
	offers := OffersConfig{AllowedTerms: []int{12, 24, 36}}
	assert.True(t, offers.TermAllowed(24))
	assert.False(t, offers.TermAllowed(18))
	assert.False(t, OffersConfig{}.TermAllowed(12))
}

func TestParseIntList(t *testing.T) {
	assert.Equal(t, []int{12, 24, 36}, parseIntList("12,24,36"))
	assert.Equal(t, []int{12, 36}, parseIntList(" 12 , nope , 36 "))
	assert.Nil(t, parseIntList(""))
}
