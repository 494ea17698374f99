package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load()
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 50, cfg.NumResults)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Empty(t, cfg.PubMedAPIKey)
	assert.Empty(t, cfg.WoSAPIKeys)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(EnvPubMedAPIKey, "pm-key")
	t.Setenv(EnvSemanticScholarAPIKey, "s2-key")
	t.Setenv(EnvWoSAPIKeys, "wos-1, wos-2, ,wos-3")

	cfg := Load()
	assert.Equal(t, "pm-key", cfg.PubMedAPIKey)
	assert.Equal(t, "s2-key", cfg.SemanticScholarAPIKey)
	assert.Equal(t, []string{"wos-1", "wos-2", "wos-3"}, cfg.WoSAPIKeys)
}

func TestLoadViperOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("workers", 8)
	viper.Set("num_results", 200)
	viper.Set("timeout", 30*time.Second)

	cfg := Load()
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 200, cfg.NumResults)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
