// Package config loads runtime settings from flags, GUAC_VEX_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load
const (
	KeyEndpoint      = "endpoint"
	KeyTimeout       = "timeout"
	KeyWait          = "wait"
	KeyOutput        = "output"
	KeyResolveAllIDs = "resolve_all_ids"
	KeyPurlProducts  = "purl_products"
	KeyListen        = "listen"
)

// Config holds the settings shared by every command
type Config struct {
	// Endpoint is the GUAC GraphQL URL. There is no default.
	Endpoint      string
	Timeout       time.Duration
	Wait          time.Duration
	Output        string
	ResolveAllIDs bool
	PurlProducts  bool
	Listen        string
}

// New returns a viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GUAC_VEX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyWait, time.Duration(0))
	v.SetDefault(KeyOutput, "json")
	v.SetDefault(KeyResolveAllIDs, false)
	v.SetDefault(KeyPurlProducts, false)
	v.SetDefault(KeyListen, ":8081")
	return v
}

// Load reads configFile (if set) into v and returns the resulting Config
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Endpoint:      strings.TrimSpace(v.GetString(KeyEndpoint)),
		Timeout:       v.GetDuration(KeyTimeout),
		Wait:          v.GetDuration(KeyWait),
		Output:        strings.ToLower(v.GetString(KeyOutput)),
		ResolveAllIDs: v.GetBool(KeyResolveAllIDs),
		PurlProducts:  v.GetBool(KeyPurlProducts),
		Listen:        v.GetString(KeyListen),
	}
	return cfg, nil
}

// Validate checks the settings every GUAC-facing command needs
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required: use --endpoint or GUAC_VEX_ENDPOINT")
	}
	if c.Timeout < 0 || c.Wait < 0 {
		return errors.New("timeout and wait must not be negative")
	}
	switch c.Output {
	case "json", "yaml":
	default:
		return fmt.Errorf("output must be json or yaml, got %q", c.Output)
	}
	return nil
}
