package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	AppName    = "Kiho Worktime Puncher"
	AppDirName = "kiho-worktime-puncher"

	// DefaultAPIURL is the Kiho v3 punch endpoint (http://developers.kiho.fi/api)
	DefaultAPIURL = "https://v3.kiho.fi/api/v1/punch"

	// APIKeyPlaceholder is written to new config files and counts as "no key"
	APIKeyPlaceholder = "Ask API Key from administrator"

	updatedLayout = "02.01.2006"
)

type Config struct {
	Title   string    `yaml:"title" toml:"title"`
	Updated string    `yaml:"updated" toml:"updated"`
	API     APIConfig `yaml:"api" toml:"api"`

	// Recurring tasks use the "Group | Description" convention
	RecurringTasks []string `yaml:"recurring_tasks" toml:"recurring_tasks"`

	// Customer cost centres keyed by id
	CostCentres       map[string]string `yaml:"cost_centres" toml:"cost_centres"`
	CostCentreRules   []CostCentreRule  `yaml:"cost_centre_rules" toml:"cost_centre_rules"`
	DefaultCostCentre int64             `yaml:"default_cost_centre" toml:"default_cost_centre"`
}

type APIConfig struct {
	URL            string `yaml:"url" toml:"url"`
	Key            string `yaml:"key" toml:"key"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// CostCentreRule picks cost centre ID for descriptions containing Contains
type CostCentreRule struct {
	Contains string `yaml:"contains" toml:"contains"`
	ID       int64  `yaml:"id" toml:"id"`
}

// Timeout returns the HTTP timeout
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// HasKey reports whether a real API key is configured
func (a APIConfig) HasKey() bool {
	key := strings.TrimSpace(a.Key)
	return key != "" && key != APIKeyPlaceholder
}

// DefaultConfigPath returns <user config dir>/kiho-worktime-puncher/config.yaml
func DefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".config", AppDirName, "config.yaml")
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, AppDirName, "config.yaml")
}

// DefaultConfig returns a config with example tasks and cost centres
func DefaultConfig() *Config {
	return &Config{
		Title:   fmt.Sprintf("Configuration file for '%s'", AppName),
		Updated: time.Now().Format(updatedLayout),
		API: APIConfig{
			URL:            DefaultAPIURL,
			Key:            APIKeyPlaceholder,
			TimeoutSeconds: 30,
		},
		RecurringTasks: []string{
			"Group A | Dummy task A-1",
			"Group A | Dummy task A-2",
			"Group B | Dummy task B-1",
			"Misc task description I",
			"Misc task description II",
			"Misc task description III",
		},
		CostCentres: map[string]string{
			"000000": "Example default customer cost centre",
		},
		CostCentreRules: []CostCentreRule{
			{Contains: "ISO27", ID: 892621},
		},
		DefaultCostCentre: 901184,
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if len(data) > 0 {
		// Decoders merge into existing maps; cost centres come from the file only
		defaults := cfg.CostCentres
		cfg.CostCentres = nil
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, err
		}
		if cfg.CostCentres == nil {
			cfg.CostCentres = defaults
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrCreate loads the config and writes the defaults when the file is missing.
// The returned bool is true when a new file was created.
func LoadOrCreate(path string) (*Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, false, err
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("failed to stat config: %w", err)
	}

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return nil, false, fmt.Errorf("failed to write default config: %w", err)
	}
	return cfg, true, nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := marshal(path, c)
	if err != nil {
		return err
	}

	// The file may hold the API key
	return os.WriteFile(path, data, 0600)
}

// Validate returns an error if the config is unusable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.URL) == "" {
		return errors.New("api.url is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		return errors.New("api.timeout_seconds must be positive")
	}
	for i, task := range c.RecurringTasks {
		if strings.TrimSpace(task) == "" {
			return fmt.Errorf("recurring_tasks[%d] is empty", i)
		}
	}
	for i, rule := range c.CostCentreRules {
		if strings.TrimSpace(rule.Contains) == "" {
			return fmt.Errorf("cost_centre_rules[%d].contains is empty", i)
		}
		if rule.ID <= 0 {
			return fmt.Errorf("cost_centre_rules[%d].id must be positive", i)
		}
	}
	if c.DefaultCostCentre < 0 {
		return errors.New("default_cost_centre cannot be negative")
	}
	return nil
}

// Redacted returns a copy safe for printing
func (c *Config) Redacted() *Config {
	cp := *c
	if c.API.HasKey() {
		cp.API.Key = "********"
	}
	return &cp
}

// YAML encodes the config as YAML regardless of the file format
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode toml: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode yaml: %w", err)
	}
	return nil
}

func marshal(path string, cfg *Config) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}
