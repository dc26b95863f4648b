package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

/**
 * @brief A build manifest. Everything in it can also be given on the
 * command line; explicit flags win over manifest values.
 */
type Config struct {
	/** @brief The annotated HLSL input file. */
	Input string `toml:"input"`
	/** @brief Folder output files are written to. */
	OutputDir string `toml:"output_dir"`
	/** @brief Target names, e.g. ["gl430", "spv"]. */
	Targets []string `toml:"targets"`
	/** @brief Path of the generated binding header, relative to the output
	 * folder. Empty disables header generation. */
	HeaderPath string `toml:"header_path"`
	/** @brief Namespace wrapping the generated header declarations. */
	HeaderNamespace string `toml:"header_namespace"`
	/** @brief Keep running and rebuild whenever the input changes. */
	Watch bool `toml:"watch"`
}

func Default() *Config {
	return &Config{OutputDir: "."}
}

// Load reads a TOML manifest.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read manifest: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to decode manifest %s: %w", path, err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("no input file specified")
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("no target shader flavors specified, use -t or the manifest targets list")
	}
	return nil
}
