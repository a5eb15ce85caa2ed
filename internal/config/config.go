package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix                = "TARTAR"
	defaultHTTPAddress       = "0.0.0.0:8080"
	defaultDatabasePath      = "tartar.db"
	defaultLogLevel          = "info"
	defaultPlacesRadius      = 10000
	defaultPlacesBaseURL     = "https://maps.googleapis.com"
	defaultCurrencyBaseURL   = "https://api.exchangerate-api.com"
	defaultReferenceCurrency = "USD"
	defaultRatingScale       = 10
)

// AppConfig captures runtime configuration for the API server. It is built
// once at process start and injected into every component that needs it.
type AppConfig struct {
	HTTPAddress       string
	DatabasePath      string
	LogLevel          string
	PlacesAPIKey      string
	PlacesRadius      int
	PlacesBaseURL     string
	CurrencyBaseURL   string
	ReferenceCurrency string
	OTPCode           string
	OTPFormat         string
	RatingScale       float64
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("places.api_key", "")
	configViper.SetDefault("places.radius", defaultPlacesRadius)
	configViper.SetDefault("places.base_url", defaultPlacesBaseURL)
	configViper.SetDefault("currency.base_url", defaultCurrencyBaseURL)
	configViper.SetDefault("currency.reference", defaultReferenceCurrency)
	configViper.SetDefault("otp.code", "")
	configViper.SetDefault("otp.format", "")
	configViper.SetDefault("rating.scale", defaultRatingScale)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		DatabasePath:      configViper.GetString("database.path"),
		LogLevel:          configViper.GetString("log.level"),
		PlacesAPIKey:      configViper.GetString("places.api_key"),
		PlacesRadius:      configViper.GetInt("places.radius"),
		PlacesBaseURL:     configViper.GetString("places.base_url"),
		CurrencyBaseURL:   configViper.GetString("currency.base_url"),
		ReferenceCurrency: strings.ToUpper(strings.TrimSpace(configViper.GetString("currency.reference"))),
		OTPCode:           configViper.GetString("otp.code"),
		OTPFormat:         configViper.GetString("otp.format"),
		RatingScale:       configViper.GetFloat64("rating.scale"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.PlacesBaseURL) == "" {
		return fmt.Errorf("places.base_url is required")
	}
	if c.PlacesRadius <= 0 {
		return fmt.Errorf("places.radius must be positive")
	}
	if strings.TrimSpace(c.CurrencyBaseURL) == "" {
		return fmt.Errorf("currency.base_url is required")
	}
	if c.ReferenceCurrency == "" {
		return fmt.Errorf("currency.reference is required")
	}
	if c.RatingScale <= 0 {
		return fmt.Errorf("rating.scale must be positive")
	}
	return nil
}
