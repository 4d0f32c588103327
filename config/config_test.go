package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeslabs/paygate/types"
)

func validConfig() *Config {
	return &Config{
		PriceLamports:    10_000_000,
		Recipient:        "7cVfgArCheMR6Cs4t6vz5rfnqd56vZq4ndaBrY5xkxXy",
		SigningSecret:    "config-test-secret-0123456789abc",
		IntentTTLSeconds: 90,
		SessionTTLMs:     600_000,
		VerifyTimeout:    8 * time.Second,
		LogLevel:         "info",
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv("PAYGATE_RECIPIENT", "7cVfgArCheMR6Cs4t6vz5rfnqd56vZq4ndaBrY5xkxXy")
	t.Setenv("PAYGATE_SIGNING_SECRET", "config-test-secret-0123456789abc")

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, int64(10_000_000), cfg.PriceLamports)
	assert.Equal(t, 90, cfg.IntentTTLSeconds)
	assert.Equal(t, int64(600_000), cfg.SessionTTLMs)
	assert.Equal(t, 90*time.Second, cfg.IntentTTL())
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 8*time.Second, cfg.VerifyTimeout)
	assert.False(t, cfg.DemoMode)
}

func TestValidate_MissingSecretFatal(t *testing.T) {
	cfg := validConfig()
	cfg.SigningSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	var perr *types.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ErrConfigError, perr.Code)
}

func TestValidate_ShortSecretFatal(t *testing.T) {
	cfg := validConfig()
	cfg.SigningSecret = "fifteen-chars!!"
	require.Error(t, cfg.Validate())
}

func TestValidate_MissingRecipientFatal(t *testing.T) {
	cfg := validConfig()
	cfg.Recipient = ""
	require.Error(t, cfg.Validate())
}

func TestValidate_BadRecipientFatal(t *testing.T) {
	cfg := validConfig()
	cfg.Recipient = "not-base58-0OIl"
	require.Error(t, cfg.Validate())
}

func TestValidate_DemoModeRelaxes(t *testing.T) {
	cfg := validConfig()
	cfg.DemoMode = true
	cfg.SigningSecret = ""
	cfg.Recipient = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DemoRecipient, cfg.Recipient)
}

func TestValidate_TagRules(t *testing.T) {
	cfg := validConfig()
	cfg.PriceLamports = 0
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.LogLevel = "verbose"
	require.Error(t, cfg.Validate())
}
