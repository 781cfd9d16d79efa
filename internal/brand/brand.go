// Package brand provides centralized naming constants for allowsync.
//
// The identity is loaded from brand.json at compile time via go:embed so that
// packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	ConfigFileName   string `json:"configFileName"`
	BinaryName       string `json:"binaryName"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	ConfigFileName = b.ConfigFileName
	BinaryName = b.BinaryName
}

var (
	Name             string
	LowerName        string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	ConfigFileName   string
	BinaryName       string

	// Version is set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// UserAgent returns a User-Agent string for HTTP requests.
// api.github.com rejects requests without one.
func UserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return Name + "/" + version
}

// Env returns the value of the prefixed environment variable, e.g. Env("REGION")
// reads ALLOWSYNC_REGION.
func Env(key string) string {
	return os.Getenv(ConfigEnvPrefix + "_" + key)
}

// GetConfigDir returns the config directory, checking env vars first.
// Priority: ALLOWSYNC_CONFIG_DIR > DefaultConfigDir
func GetConfigDir() string {
	if dir := Env("CONFIG_DIR"); dir != "" {
		return dir
	}
	return DefaultConfigDir
}

// GetConfigPath returns the config file path.
// Priority: ALLOWSYNC_CONFIG > GetConfigDir()/ConfigFileName
func GetConfigPath() string {
	if path := Env("CONFIG"); path != "" {
		return path
	}
	return filepath.Join(GetConfigDir(), ConfigFileName)
}
