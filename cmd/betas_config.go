package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/carrier-sim/carrier-sim/sim"
)

// BetasConfig is the YAML layout of the pre-estimated discrete-choice weight
// tables. The two tables are independent: one scores shipper acceptance, one
// recipient acceptance. Keys absent from a table weigh zero.
type BetasConfig struct {
	Version    string             `yaml:"version"`
	Shippers   map[string]float64 `yaml:"shippers"`
	Recipients map[string]float64 `yaml:"recipients"`
}

// LoadBetas reads a betas YAML file and returns the shipper and recipient
// coefficient tables.
func LoadBetas(path string) (shippers, recipients sim.ChoiceCoefficients, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load betas: %w", err)
	}

	var cfg BetasConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("load betas: parse %s: %w", path, err)
	}
	if len(cfg.Shippers) == 0 || len(cfg.Recipients) == 0 {
		return nil, nil, fmt.Errorf("load betas: %s must define non-empty shippers and recipients tables", path)
	}
	return sim.ChoiceCoefficients(cfg.Shippers), sim.ChoiceCoefficients(cfg.Recipients), nil
}
