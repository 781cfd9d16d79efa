package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"grimm.is/allowsync/internal/brand"
)

// Load reads path if it exists, applies environment overrides and validates
// the result. A missing file is not an error: Lambda deployments run on
// defaults and environment alone.
func Load(path string) (*Config, error) {
	var cfg *Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err = LoadHCL(data, path)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		cfg = Default()
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); errs.HasErrors() {
		return nil, fmt.Errorf("invalid config %s: %w", path, errs)
	}
	return cfg, nil
}

// LoadHCL decodes HCL bytes and fills defaults. It does not validate.
func LoadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse error: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("HCL decode error: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// ApplyEnv applies ALLOWSYNC_REGION, ALLOWSYNC_TAG_KEY, ALLOWSYNC_CONCURRENCY,
// ALLOWSYNC_LOG_LEVEL and ALLOWSYNC_LOG_JSON on top of the file values.
func (c *Config) ApplyEnv() error {
	if v := brand.Env("REGION"); v != "" {
		c.Region = v
	}
	if v := brand.Env("TAG_KEY"); v != "" {
		c.TagKey = v
	}
	if v := brand.Env("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := brand.Env("CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s_CONCURRENCY: %w", brand.ConfigEnvPrefix, err)
		}
		c.Concurrency = n
	}
	if v := brand.Env("LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s_LOG_JSON: %w", brand.ConfigEnvPrefix, err)
		}
		c.LogJSON = b
	}
	return nil
}
