package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/utils"
)

// BudgetOverride replaces a level's target/variance pair for one deployment.
type BudgetOverride struct {
	Target   int `mapstructure:"target" yaml:"target"`
	Variance int `mapstructure:"variance" yaml:"variance"`
}

// Global configuration structure. Override tables are keyed by level
// number (as strings, the natural YAML/env representation) and feed an
// injected schema registry; the shared stock table is never mutated.
type Global struct {
	ServeAddr  string `mapstructure:"serve_addr" yaml:"serve_addr"`
	PayloadDir string `mapstructure:"payload_dir" yaml:"payload_dir"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`

	BudgetOverrides map[string]BudgetOverride `mapstructure:"budget_overrides" yaml:"budget_overrides,omitempty"`
	TTLOverrides    map[string]int            `mapstructure:"ttl_overrides" yaml:"ttl_overrides,omitempty"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.slim/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".slim")
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SLIM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("serve_addr", "127.0.0.1:8547")
	v.SetDefault("payload_dir", "")
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".slim")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Registry builds a schema registry with this deployment's overrides
// applied. Keys that are not valid level numbers are reported as errors
// rather than silently dropped.
func (c *Global) Registry() (*schema.Registry, error) {
	if len(c.BudgetOverrides) == 0 && len(c.TTLOverrides) == 0 {
		return schema.Default(), nil
	}
	o := schema.Overrides{
		Budgets: make(map[schema.Level]schema.BudgetOverride),
		TTLs:    make(map[schema.Level]int),
	}
	for key, b := range c.BudgetOverrides {
		l, err := parseLevelKey(key)
		if err != nil {
			return nil, fmt.Errorf("budget_overrides: %w", err)
		}
		o.Budgets[l] = schema.BudgetOverride{Target: b.Target, Variance: b.Variance}
	}
	for key, ttl := range c.TTLOverrides {
		l, err := parseLevelKey(key)
		if err != nil {
			return nil, fmt.Errorf("ttl_overrides: %w", err)
		}
		o.TTLs[l] = ttl
	}
	return schema.New(o), nil
}

func parseLevelKey(key string) (schema.Level, error) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("invalid level key %q", key)
	}
	if !schema.Valid(schema.Level(n)) {
		return 0, fmt.Errorf("level key %d out of range 0-9", n)
	}
	return schema.Level(n), nil
}
