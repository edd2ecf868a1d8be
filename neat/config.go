package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the NEAT pool.
type Config struct {
	Neat         NeatConfig         `yaml:"neat"`
	Genome       GenomeConfig       `yaml:"genome"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Stagnation   StagnationConfig   `yaml:"stagnation"`
}

// NeatConfig holds the population-wide parameters.
type NeatConfig struct {
	PopSize           int   `ini:"pop_size" yaml:"pop_size"`
	NumInputs         int   `ini:"num_inputs" yaml:"num_inputs"`   // The last input is the bias unit.
	NumOutputs        int   `ini:"num_outputs" yaml:"num_outputs"` //
	Seed              int64 `ini:"seed" yaml:"seed"`               // 0 seeds from the clock.
	ResetOnExtinction bool  `ini:"reset_on_extinction" yaml:"reset_on_extinction"`
}

// GenomeConfig holds the compatibility coefficients and the initial
// self-adapting mutation rates every basic genome starts with.
type GenomeConfig struct {
	// --- Compatibility ---
	DeltaDisjoint  float32 `ini:"delta_disjoint" yaml:"delta_disjoint"`
	DeltaWeights   float32 `ini:"delta_weights" yaml:"delta_weights"`
	DeltaThreshold float32 `ini:"delta_threshold" yaml:"delta_threshold"`

	// --- Weights ---
	PerturbChance float32 `ini:"perturb_chance" yaml:"perturb_chance"`
	WeightRange   float32 `ini:"weight_range" yaml:"weight_range"` // Fresh weights are drawn from U(-r, r).
	RateAdapt     float32 `ini:"rate_adapt" yaml:"rate_adapt"`     // Each rate is scaled by 1±RateAdapt per mutation.

	// --- Initial mutation rates (expected operator calls, may exceed 1) ---
	MutateConnectionsChance float32 `ini:"mutate_connections_chance" yaml:"mutate_connections_chance"`
	LinkMutationChance      float32 `ini:"link_mutation_chance" yaml:"link_mutation_chance"`
	BiasMutationChance      float32 `ini:"bias_mutation_chance" yaml:"bias_mutation_chance"`
	NodeMutationChance      float32 `ini:"node_mutation_chance" yaml:"node_mutation_chance"`
	EnableMutationChance    float32 `ini:"enable_mutation_chance" yaml:"enable_mutation_chance"`
	DisableMutationChance   float32 `ini:"disable_mutation_chance" yaml:"disable_mutation_chance"`
	StepSize                float32 `ini:"step_size" yaml:"step_size"`
}

// ReproductionConfig holds parameters related to breeding.
type ReproductionConfig struct {
	CrossoverChance float32 `ini:"crossover_chance" yaml:"crossover_chance"`
	SurvivalRatio   float32 `ini:"survival_ratio" yaml:"survival_ratio"` // Fraction kept by the first cull, rounded up.
}

// StagnationConfig holds parameters related to species stagnation.
type StagnationConfig struct {
	MaxStagnation int `ini:"max_stagnation" yaml:"max_stagnation"`
}

// DefaultConfig returns the classic parameter set. Inputs and outputs are
// left at zero; they are supplied to Setup or set by the caller.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:           300,
			ResetOnExtinction: true,
		},
		Genome: GenomeConfig{
			DeltaDisjoint:           2.0,
			DeltaWeights:            0.4,
			DeltaThreshold:          1.0,
			PerturbChance:           0.90,
			WeightRange:             2.0,
			RateAdapt:               0.05,
			MutateConnectionsChance: 0.25,
			LinkMutationChance:      2.0,
			BiasMutationChance:      0.40,
			NodeMutationChance:      0.50,
			EnableMutationChance:    0.2,
			DisableMutationChance:   0.4,
			StepSize:                0.1,
		},
		Reproduction: ReproductionConfig{
			CrossoverChance: 0.75,
			SurvivalRatio:   0.5,
		},
		Stagnation: StagnationConfig{
			MaxStagnation: 15,
		},
	}
}

// InitialRates returns the mutation rates a basic genome starts with.
func (gc *GenomeConfig) InitialRates() MutationRates {
	return MutationRates{
		Connections: gc.MutateConnectionsChance,
		Link:        gc.LinkMutationChance,
		Bias:        gc.BiasMutationChance,
		Node:        gc.NodeMutationChance,
		Enable:      gc.EnableMutationChance,
		Disable:     gc.DisableMutationChance,
		Step:        gc.StepSize,
	}
}

// LoadConfig loads configuration parameters from an INI file, or from a YAML
// file when the path ends in .yaml or .yml. Keys that are absent keep the
// values of DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	default:
		// Inline comments are kept as part of the value, so "0.5 ; note"
		// fails StrictMapTo instead of being read as 0.5.
		cfg, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment:         true,
			UnescapeValueCommentSymbols: true,
		}, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		sections := []struct {
			name   string
			target interface{}
		}{
			{"NEAT", &config.Neat},
			{"DefaultGenome", &config.Genome},
			{"DefaultReproduction", &config.Reproduction},
			{"DefaultStagnation", &config.Stagnation},
		}
		for _, s := range sections {
			if !cfg.HasSection(s.name) {
				continue // Missing sections keep the defaults.
			}
			if err := cfg.Section(s.name).StrictMapTo(s.target); err != nil {
				return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
			}
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the parameter ranges. Inputs and outputs are only checked
// when set, since Setup may supply them later.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Neat.NumInputs < 0 {
		return fmt.Errorf("config error: num_inputs cannot be negative")
	}
	if c.Neat.NumOutputs < 0 {
		return fmt.Errorf("config error: num_outputs cannot be negative")
	}

	// --- Genome ---
	g := &c.Genome
	if g.DeltaDisjoint < 0 {
		return fmt.Errorf("config error: delta_disjoint cannot be negative")
	}
	if g.DeltaWeights < 0 {
		return fmt.Errorf("config error: delta_weights cannot be negative")
	}
	if g.DeltaThreshold <= 0 {
		return fmt.Errorf("config error: delta_threshold must be positive")
	}
	if g.PerturbChance < 0 || g.PerturbChance > 1 {
		return fmt.Errorf("config error: perturb_chance must be between 0 and 1")
	}
	if g.WeightRange <= 0 {
		return fmt.Errorf("config error: weight_range must be positive")
	}
	if g.RateAdapt < 0 || g.RateAdapt >= 1 {
		return fmt.Errorf("config error: rate_adapt must be in [0, 1)")
	}
	// Structural rates are expected counts and may exceed 1.
	rates := g.InitialRates()
	for _, e := range rates.Entries() {
		if e.Value < 0 {
			return fmt.Errorf("config error: mutation rate '%s' cannot be negative", e.Name)
		}
	}
	if g.MutateConnectionsChance > 1 {
		return fmt.Errorf("config error: mutate_connections_chance must be between 0 and 1")
	}

	// --- Reproduction & Stagnation ---
	if c.Reproduction.CrossoverChance < 0 || c.Reproduction.CrossoverChance > 1 {
		return fmt.Errorf("config error: crossover_chance must be between 0 and 1")
	}
	if c.Reproduction.SurvivalRatio <= 0 || c.Reproduction.SurvivalRatio > 1 {
		return fmt.Errorf("config error: survival_ratio must be in (0, 1]")
	}
	if c.Stagnation.MaxStagnation <= 0 {
		return fmt.Errorf("config error: max_stagnation must be positive")
	}
	return nil
}
