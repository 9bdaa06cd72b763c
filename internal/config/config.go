package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gpunexus/internal/explain"
	"github.com/san-kum/gpunexus/internal/parallel"
	"github.com/san-kum/gpunexus/internal/pipeline"
)

const (
	DefaultTheme     = "nexus"
	DefaultAPIKeyEnv = "API_KEY"
	// FallbackAPIKeyEnv is read when the configured variable is unset.
	FallbackAPIKeyEnv = "GEMINI_API_KEY"
)

type Config struct {
	Theme      string           `yaml:"theme"`
	Simulation SimulationConfig `yaml:"simulation"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Log        LogConfig        `yaml:"log"`
}

type SimulationConfig struct {
	// Preset names the base values; fields set in the file override it.
	Preset               string        `yaml:"preset,omitempty"`
	Tasks                int           `yaml:"tasks"`
	Lanes                int           `yaml:"lanes"`
	SerialTick           time.Duration `yaml:"serial_tick"`
	SerialTasksPerSecond float64       `yaml:"serial_tasks_per_second"`
	ParallelTick         time.Duration `yaml:"parallel_tick"`
	ParallelBaseStep     float64       `yaml:"parallel_base_step"`
	ParallelJitter       float64       `yaml:"parallel_jitter"`
	Deadline             time.Duration `yaml:"deadline"`
	Seed                 int64         `yaml:"seed"`
}

type PipelineConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type AssistantConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type LogConfig struct {
	Debug  bool   `yaml:"debug"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

func defaultSimulation() SimulationConfig {
	p := parallel.DefaultConfig()
	return SimulationConfig{
		Tasks:                p.Tasks,
		Lanes:                p.Lanes,
		SerialTick:           p.SerialTick,
		SerialTasksPerSecond: p.SerialTasksPerSecond,
		ParallelTick:         p.ParallelTick,
		ParallelBaseStep:     p.ParallelBaseStep,
		ParallelJitter:       p.ParallelJitter,
		Deadline:             p.Deadline,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Theme:      DefaultTheme,
		Simulation: defaultSimulation(),
		Pipeline:   PipelineConfig{Interval: pipeline.DefaultInterval},
		Assistant: AssistantConfig{
			Model:     explain.DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Log: LogConfig{Format: "text"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	if name := cfg.Simulation.Preset; name != "" {
		if err := cfg.ApplyPreset(name); err != nil {
			return nil, err
		}
		// Second pass so explicit simulation fields win over the preset.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyPreset replaces the simulation section with the named preset.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("unknown simulation preset %q", name)
	}
	c.Simulation = p.Simulation
	c.Simulation.Preset = name
	return nil
}

func (c *Config) Validate() error {
	if err := c.Parallel().Validate(); err != nil {
		return err
	}
	if c.Pipeline.Interval <= 0 {
		return fmt.Errorf("pipeline interval must be positive, got %s", c.Pipeline.Interval)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Parallel converts the simulation section for the simulator.
func (c *Config) Parallel() parallel.Config {
	s := c.Simulation
	return parallel.Config{
		Tasks:                s.Tasks,
		Lanes:                s.Lanes,
		SerialTick:           s.SerialTick,
		SerialTasksPerSecond: s.SerialTasksPerSecond,
		ParallelTick:         s.ParallelTick,
		ParallelBaseStep:     s.ParallelBaseStep,
		ParallelJitter:       s.ParallelJitter,
		Deadline:             s.Deadline,
		Seed:                 s.Seed,
	}
}

// APIKey reads the credential from the environment. An empty result means the
// assistant runs without a remote service.
func (c *Config) APIKey() string {
	name := c.Assistant.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	if key := os.Getenv(name); key != "" {
		return key
	}
	return os.Getenv(FallbackAPIKeyEnv)
}
