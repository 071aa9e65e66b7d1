package config

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/curved/internal/fixedpoint"
)

// Engine configuration loaded from environment variables. These are
// populated at startup by LoadConfig.
var (
	// WebPort is the port the HTTP quote API listens on.
	WebPort string

	// ProgressiveSlope is the slope m of the progressive curve. The raw
	// fixed-point value must be even and nonzero.
	ProgressiveSlope fixedpoint.UFixed

	// OffsetProgressiveSlope and OffsetProgressiveOffset parameterize the
	// offset progressive curve.
	OffsetProgressiveSlope  fixedpoint.UFixed
	OffsetProgressiveOffset fixedpoint.UFixed
)

// Defaults used when the corresponding environment variable is unset.
const (
	defaultWebPort                 = "8080"
	defaultProgressiveSlope        = "2.0"
	defaultOffsetProgressiveSlope  = "2.0"
	defaultOffsetProgressiveOffset = "5.0"
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Curve parameters fall back to defaults when unset.
func LoadConfig() error {
	log.Info().Msg("Loading engine configuration from environment variables...")

	WebPort = getEnvOr("WEB_PORT", defaultWebPort)

	var err error
	ProgressiveSlope, err = getEnvAsUFixed("PROGRESSIVE_SLOPE", defaultProgressiveSlope)
	if err != nil {
		return err
	}
	OffsetProgressiveSlope, err = getEnvAsUFixed("OFFSET_PROGRESSIVE_SLOPE", defaultOffsetProgressiveSlope)
	if err != nil {
		return err
	}
	OffsetProgressiveOffset, err = getEnvAsUFixed("OFFSET_PROGRESSIVE_OFFSET", defaultOffsetProgressiveOffset)
	if err != nil {
		return err
	}

	log.Debug().
		Str("WebPort", WebPort).
		Str("ProgressiveSlope", ProgressiveSlope.String()).
		Str("OffsetProgressiveSlope", OffsetProgressiveSlope.String()).
		Str("OffsetProgressiveOffset", OffsetProgressiveOffset.String()).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnvOr retrieves a string environment variable with a fallback default.
func getEnvOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvAsUFixed retrieves an environment variable as a fixed-point decimal.
// Returns error if the value is set but invalid.
func getEnvAsUFixed(key, fallback string) (fixedpoint.UFixed, error) {
	valueStr := getEnvOr(key, fallback)
	value, err := fixedpoint.Parse(valueStr)
	if err != nil {
		return fixedpoint.UFixed{}, errors.New("environment variable " + key + " must be a valid decimal, got: " + valueStr)
	}
	return value, nil
}
