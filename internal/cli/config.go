package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig holds batch run defaults loaded from a YAML file. Flags
// given on the command line override config values; the config only
// fills in what the flags left at their zero defaults.
type RunConfig struct {
	Workers       int      `yaml:"workers"`
	EngineBin     string   `yaml:"engine_bin"`
	EngineArgs    []string `yaml:"engine_args"`
	EngineEnv     []string `yaml:"engine_env"`
	JobIDMode     string   `yaml:"job_id_mode"`
	Manifest      string   `yaml:"manifest"`
	MaxDiffs      int      `yaml:"max_diffs"`
	Database      string   `yaml:"database"`
}

// LoadRunConfig reads and decodes a run config file.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}
