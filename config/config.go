// Package config holds the environment-driven configuration for the
// gateway. Misconfiguration that would weaken the paywall (missing secret,
// missing recipient) fails at startup, never per request.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"

	"github.com/hadeslabs/paygate/types"
)

const (
	// EnvPrefix namespaces every environment variable, e.g.
	// PAYGATE_PRICE_LAMPORTS.
	EnvPrefix = "PAYGATE"

	// DemoRecipient stands in for the merchant address when demo mode
	// runs without one configured.
	DemoRecipient = "11111111111111111111111111111111"
)

// Config is the full recognized option set.
type Config struct {
	// Price of the protected resource in lamports.
	PriceLamports int64 `conf:"default:10000000" validate:"gt=0"`

	// Base58 address payments must be sent to. Required outside demo mode.
	Recipient string

	// Secret keying the credential MAC. Required outside demo mode,
	// minimum 16 characters.
	SigningSecret string `conf:"noprint"`

	// Quote lifetime.
	IntentTTLSeconds int `conf:"default:90" validate:"gt=0"`

	// Session credential lifetime.
	SessionTTLMs int64 `conf:"default:600000" validate:"gt=0"`

	// Ledger RPC endpoint.
	RPCURL string `conf:"default:https://api.devnet.solana.com"`

	// Bound on a single ledger query before it is treated as not-found.
	VerifyTimeout time.Duration `conf:"default:8s"`

	// Demo mode swaps in the in-memory ledger and relaxes the secret and
	// recipient requirements so the flow runs without a funded account.
	DemoMode bool `conf:"default:false"`

	// One session per transaction id when set.
	ReplayGuard bool `conf:"default:false"`

	APIHost         string        `conf:"default:0.0.0.0:3000"`
	ShutdownTimeout time.Duration `conf:"default:5s"`
	LogLevel        string        `conf:"default:info" validate:"omitempty,oneof=debug info warn error"`
}

// Parse reads configuration from args and the PAYGATE_* environment, then
// validates it.
func Parse(args []string) (*Config, error) {
	var cfg Config
	if err := conf.Parse(args, EnvPrefix, &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, usageErr := conf.Usage(EnvPrefix, &cfg)
			if usageErr != nil {
				return nil, fmt.Errorf("generating usage: %w", usageErr)
			}
			fmt.Println(usage)
			return nil, err
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies the struct tags, then the demo-mode-sensitive rules the
// tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return types.ConfigErrorf("invalid configuration: %v", err)
	}

	if c.DemoMode {
		if c.Recipient == "" {
			c.Recipient = DemoRecipient
		}
		return nil
	}

	if len(c.SigningSecret) < 16 {
		return types.ConfigErrorf("%s_SIGNING_SECRET must be set (16+ chars) when demo mode is off", EnvPrefix)
	}
	if c.Recipient == "" {
		return types.ConfigErrorf("%s_RECIPIENT must be set when demo mode is off", EnvPrefix)
	}
	if _, err := solana.PublicKeyFromBase58(c.Recipient); err != nil {
		return types.ConfigErrorf("recipient is not a valid base58 address: %v", err)
	}
	return nil
}

// IntentTTL returns the quote lifetime as a duration.
func (c *Config) IntentTTL() time.Duration {
	return time.Duration(c.IntentTTLSeconds) * time.Second
}

// SessionTTL returns the credential lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMs) * time.Millisecond
}
