package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"toyc/common"

	"github.com/pelletier/go-toml"
)

// tomlConfigFile represents the project configuration as it is encoded in
// TOML.
type tomlConfigFile struct {
	Target   *tomlTarget   `toml:"target"`
	Optimize *tomlOptimize `toml:"optimize"`
}

// tomlTarget represents the target description as it is encoded in TOML.
type tomlTarget struct {
	Name          string `toml:"name,omitempty"`
	WordSize      int    `toml:"word-size"`
	SupportsShift bool   `toml:"supports-shift"`
}

// tomlOptimize represents the optimizer settings as it is encoded in TOML.
type tomlOptimize struct {
	Disable []string `toml:"disable,omitempty"`
}

// Config is the loaded and validated project configuration.
type Config struct {
	// TargetName is a human-readable name for the target ("riscv32" by
	// default).  It is informational only.
	TargetName string

	// WordSize is the size of a machine word in bytes.  Every variable and
	// parameter occupies exactly one word of stack space.
	WordSize int

	// SupportsShift indicates whether the target has shift instructions.
	// Strength reduction only rewrites multiplications into shifts when
	// this is set.
	SupportsShift bool

	// DisabledPasses names optimization passes that should be skipped.
	DisabledPasses []string
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		TargetName: "riscv32",
		WordSize:   4,
	}
}

// Load reads the project configuration from the directory `dir`.  A missing
// config file is not an error: the defaults are returned.  A malformed
// config file is an error.
func Load(dir string) (*Config, error) {
	f, err := os.Open(filepath.Join(dir, common.ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return nil, err
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tcf := &tomlConfigFile{}
	if err := toml.Unmarshal(buff, tcf); err != nil {
		return nil, fmt.Errorf("error parsing %s: %s", common.ConfigFileName, err.Error())
	}

	cfg := Default()
	if tcf.Target != nil {
		if tcf.Target.Name != "" {
			cfg.TargetName = tcf.Target.Name
		}

		if tcf.Target.WordSize != 0 {
			if tcf.Target.WordSize < 0 {
				return nil, fmt.Errorf("invalid word size: %d", tcf.Target.WordSize)
			}

			cfg.WordSize = tcf.Target.WordSize
		}

		cfg.SupportsShift = tcf.Target.SupportsShift
	}

	if tcf.Optimize != nil {
		cfg.DisabledPasses = tcf.Optimize.Disable
	}

	return cfg, nil
}
