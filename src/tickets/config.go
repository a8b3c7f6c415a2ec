package tickets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the optional dashboard.yaml settings shared by the CLI and the
// viewer. Every field has a compiled default so the file may be absent.
type Config struct {
	CSVPath string `yaml:"csv_path"`

	// Anomaly threshold slider bounds (minutes).
	ThresholdMin     float64 `yaml:"threshold_min"`
	ThresholdMax     float64 `yaml:"threshold_max"`
	ThresholdDefault float64 `yaml:"threshold_default"`
	ThresholdStep    float64 `yaml:"threshold_step"`

	// Two-group comparison: the categorical column and the two labels compared.
	CompareColumn string `yaml:"compare_column"`
	CompareGroupA string `yaml:"compare_group_a"`
	CompareGroupB string `yaml:"compare_group_b"`
}

// DefaultConfig returns the built-in settings (Chatbot vs Live Agent CSAT
// comparison, 60–300 minute threshold slider defaulting to 180).
func DefaultConfig() Config {
	return Config{
		CSVPath:          "support_tickets.csv",
		ThresholdMin:     60,
		ThresholdMax:     300,
		ThresholdDefault: 180,
		ThresholdStep:    10,
		CompareColumn:    "Channel",
		CompareGroupA:    "Chatbot",
		CompareGroupB:    "Live Agent",
	}
}

// LoadConfig reads path and overlays it onto the defaults. A missing file is
// not an error; a malformed one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			Debugf("config: %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	Infof("config: loaded %s", path)
	return cfg, nil
}

func (c Config) validate() error {
	if c.ThresholdMin > c.ThresholdMax {
		return fmt.Errorf("threshold_min %.0f > threshold_max %.0f", c.ThresholdMin, c.ThresholdMax)
	}
	if c.ThresholdStep <= 0 {
		return fmt.Errorf("threshold_step must be positive, got %.0f", c.ThresholdStep)
	}
	if c.CompareGroupA == c.CompareGroupB {
		return fmt.Errorf("compare groups must differ, both are %q", c.CompareGroupA)
	}
	return nil
}
