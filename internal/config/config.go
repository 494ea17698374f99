// Package config loads citemap configuration from environment variables and
// optional config files via Viper.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment variable names for source credentials.
const (
	EnvPubMedAPIKey          = "PUBMED_API_KEY"
	EnvSemanticScholarAPIKey = "SEMANTIC_SCHOLAR_API_KEY"
	EnvWoSAPIKeys            = "WOS_API_KEYS"
)

// Config holds runtime settings for the aggregator and its adapters.
type Config struct {
	// Workers is the orchestrator worker pool size.
	Workers int

	// Timeout bounds an entire aggregation call. Zero disables it.
	Timeout time.Duration

	// NumResults is the default per-source result cap.
	NumResults int

	// PubMedAPIKey raises NCBI rate limits when set.
	PubMedAPIKey string

	// SemanticScholarAPIKey raises Graph API rate limits when set.
	SemanticScholarAPIKey string

	// WoSAPIKeys is the rotating key set for Web of Science.
	WoSAPIKeys []string
}

// Load reads configuration from Viper and the environment, with defaults
// for anything unset.
func Load() *Config {
	viper.SetDefault("workers", 4)
	viper.SetDefault("num_results", 50)
	viper.SetDefault("timeout", time.Duration(0))

	cfg := &Config{
		Workers:               viper.GetInt("workers"),
		Timeout:               viper.GetDuration("timeout"),
		NumResults:            viper.GetInt("num_results"),
		PubMedAPIKey:          GetString(EnvPubMedAPIKey),
		SemanticScholarAPIKey: GetString(EnvSemanticScholarAPIKey),
	}

	if keys := GetString(EnvWoSAPIKeys); keys != "" {
		for _, key := range strings.Split(keys, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.WoSAPIKeys = append(cfg.WoSAPIKeys, key)
			}
		}
	}

	return cfg
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}
