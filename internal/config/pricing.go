package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// PricingConfig carries the lookup tables used by the rate engine and the
// currency converter. It is read once at process start.
type PricingConfig struct {
	BaseCurrency              string             `mapstructure:"baseCurrency"`
	DefaultPlatformFactor     float64            `mapstructure:"defaultPlatformFactor"`
	PlatformFactors           map[string]float64 `mapstructure:"platformFactors"`
	DefaultCampaignMultiplier float64            `mapstructure:"defaultCampaignMultiplier"`
	CampaignMultipliers       map[string]float64 `mapstructure:"campaignMultipliers"`
	Currencies                map[string]float64 `mapstructure:"currencies"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BaseCurrency:          "USD",
		DefaultPlatformFactor: 0.25,
		PlatformFactors: map[string]float64{
			"youtube":   0.50,
			"instagram": 0.30,
			"tiktok":    0.20,
			"twitter":   0.15,
		},
		DefaultCampaignMultiplier: 1.0,
		CampaignMultipliers: map[string]float64{
			"reel":      2.0,
			"video":     2.0,
			"sponsored": 2.5,
			"post":      1.5,
			"story":     1.2,
		},
		Currencies: map[string]float64{
			"USD": 1,
			"EUR": 0.85,
			"GBP": 0.73,
			"ZAR": 18.5,
			"CAD": 1.35,
			"AUD": 1.45,
		},
	}
}

// NewPricingConfig reads pricing.yml from the standard locations.
func NewPricingConfig() (PricingConfig, error) {
	return LoadPricingConfig("/etc/ratecard", ".")
}

// LoadPricingConfig reads pricing.yml from the given paths, falling back to
// DefaultPricingConfig when no file is present. Sections missing from the
// file keep their default values.
func LoadPricingConfig(paths ...string) (PricingConfig, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("RATECARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return PricingConfig{}, err
		}
		return defaults, nil
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return PricingConfig{}, err
	}

	if strings.TrimSpace(cfg.BaseCurrency) == "" {
		cfg.BaseCurrency = defaults.BaseCurrency
	}
	if !v.IsSet("pricing.defaultPlatformFactor") {
		cfg.DefaultPlatformFactor = defaults.DefaultPlatformFactor
	}
	if !v.IsSet("pricing.defaultCampaignMultiplier") {
		cfg.DefaultCampaignMultiplier = defaults.DefaultCampaignMultiplier
	}
	if len(cfg.PlatformFactors) == 0 {
		cfg.PlatformFactors = defaults.PlatformFactors
	}
	if len(cfg.CampaignMultipliers) == 0 {
		cfg.CampaignMultipliers = defaults.CampaignMultipliers
	}
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = defaults.Currencies
	}

	// viper lower-cases map keys
	cfg.BaseCurrency = strings.ToUpper(strings.TrimSpace(cfg.BaseCurrency))
	currencies := make(map[string]float64, len(cfg.Currencies))
	for code, multiplier := range cfg.Currencies {
		currencies[strings.ToUpper(strings.TrimSpace(code))] = multiplier
	}
	cfg.Currencies = currencies

	if err := ValidatePricingConfig(cfg); err != nil {
		return PricingConfig{}, err
	}
	return cfg, nil
}

func ValidatePricingConfig(cfg PricingConfig) error {
	if cfg.DefaultPlatformFactor < 0 {
		return errors.New("pricing.defaultPlatformFactor cannot be negative")
	}
	for platform, factor := range cfg.PlatformFactors {
		if factor < 0 {
			return fmt.Errorf("pricing.platformFactors.%s cannot be negative", platform)
		}
	}
	if cfg.DefaultCampaignMultiplier < 0 {
		return errors.New("pricing.defaultCampaignMultiplier cannot be negative")
	}
	for campaign, multiplier := range cfg.CampaignMultipliers {
		if multiplier < 0 {
			return fmt.Errorf("pricing.campaignMultipliers.%s cannot be negative", campaign)
		}
	}
	if len(cfg.Currencies) == 0 {
		return errors.New("pricing.currencies cannot be empty")
	}
	for code, multiplier := range cfg.Currencies {
		if multiplier <= 0 {
			return fmt.Errorf("pricing.currencies.%s must be positive", code)
		}
	}
	base, ok := cfg.Currencies[cfg.BaseCurrency]
	if !ok {
		return fmt.Errorf("pricing.baseCurrency %s missing from pricing.currencies", cfg.BaseCurrency)
	}
	if base != 1 {
		return fmt.Errorf("pricing.currencies.%s must be 1 for the base currency", cfg.BaseCurrency)
	}
	return nil
}
