// Package config loads the three document settings from the state directory.
//
// Sources, lowest to highest precedence: built-in defaults, conf.yaml, the
// process environment (optionally seeded from a .env file) and command line
// flags merged in by the caller. No field is validated here; a broken pattern
// only surfaces when the link resolver compiles it.
package config

import (
	"os"

	"github.com/edward-yakop/go-pubdoc/api/document"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "conf.yaml"
	EnvFile   = ".env"
	CacheName = "cache"

	EnvDomain  = "PUBDOC_DOMAIN"
	EnvURL     = "PUBDOC_URL"
	EnvPattern = "PUBDOC_RE"
)

// Config holds the optional document settings. Empty means unset.
type Config struct {
	Domain string `yaml:"domain"`
	URL    string `yaml:"url"`
	Re     string `yaml:"re"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Domain: document.DefaultDomain,
		URL:    document.DefaultURL,
		Re:     document.DefaultPattern,
	}
}

// LoadFromFile reads a YAML config. A missing file is not an error and yields
// an empty Config.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, errors.Wrap(err, "Read config ["+path+"] failed")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "Parse config ["+path+"] failed")
	}
	return cfg, nil
}

// LoadEnvFile seeds the process environment from a dotenv file. Variables that
// are already set win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "Stat env file ["+path+"] failed")
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrap(err, "Load env file ["+path+"] failed")
	}
	return nil
}

// FromEnv returns the settings present in the environment.
func FromEnv() Config {
	return Config{
		Domain: os.Getenv(EnvDomain),
		URL:    os.Getenv(EnvURL),
		Re:     os.Getenv(EnvPattern),
	}
}

// Merge returns c with every non-empty field of override applied.
func (c Config) Merge(override Config) Config {
	if override.Domain != "" {
		c.Domain = override.Domain
	}
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Re != "" {
		c.Re = override.Re
	}
	return c
}

// Load resolves the settings for stateDir: defaults, then conf.yaml, then .env
// and the environment.
func Load(stateDir string) (Config, error) {
	file, err := LoadFromFile(FilePath(stateDir))
	if err != nil {
		return Config{}, err
	}
	if err := LoadEnvFile(joinState(stateDir, EnvFile)); err != nil {
		return Config{}, err
	}
	return Default().Merge(file).Merge(FromEnv()), nil
}

// Document builds the pipeline configuration using the cache slot inside
// stateDir.
func (c Config) Document(stateDir string) document.Config {
	return document.Config{
		Domain:    c.Domain,
		URL:       c.URL,
		Pattern:   c.Re,
		CacheFile: CachePath(stateDir),
	}
}
