package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/opsched/internal/domain"
	"github.com/felixgeelhaar/opsched/internal/errors"
	"github.com/felixgeelhaar/opsched/internal/log"
	"github.com/felixgeelhaar/opsched/internal/telemetry"
)

// DefaultPath is where opsched looks for its configuration file
const DefaultPath = ".opsched/config.yaml"

// Agent kinds
const (
	AgentSim   = "sim"
	AgentShell = "shell"
)

// Config is the opsched configuration file
type Config struct {
	Scheduler SchedulerConfig                   `yaml:"scheduler"`
	Log       LogConfig                         `yaml:"log"`
	Telemetry telemetry.Config                  `yaml:"telemetry"`
	Metrics   MetricsConfig                     `yaml:"metrics"`
	Agents    map[domain.Capability]AgentConfig `yaml:"agents"`
}

// SchedulerConfig controls plan execution
type SchedulerConfig struct {
	// Concurrency is the requested number of items in flight per level
	Concurrency int `yaml:"concurrency"`
	// ItemTimeout bounds each agent call; zero disables the limit
	ItemTimeout time.Duration `yaml:"item_timeout"`
	// ReportDir receives one JSON report per run when set
	ReportDir string `yaml:"report_dir,omitempty"`
}

// LogConfig selects the structured logger's level and format
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint served during a run
type MetricsConfig struct {
	// Addr is the listen address of /metrics; empty disables the endpoint
	Addr string `yaml:"addr,omitempty"`
}

// AgentConfig describes the agent bound to one capability
type AgentConfig struct {
	// Kind is "sim" or "shell"
	Kind string `yaml:"kind"`

	// Command is the shell agent's program and arguments
	Command []string `yaml:"command,omitempty"`
	// EscalateExitCode is the exit status the shell agent treats as escalation (0 disables)
	EscalateExitCode int `yaml:"escalate_exit_code,omitempty"`

	// MinuteScale is how long the sim agent sleeps per estimated minute
	MinuteScale time.Duration `yaml:"minute_scale,omitempty"`
	// Fail lists item ids the sim agent fails
	Fail []string `yaml:"fail,omitempty"`
	// Escalate lists item ids the sim agent escalates
	Escalate []string `yaml:"escalate,omitempty"`
}

// Default returns the configuration used when no file exists:
// every capability is served by a fast sim agent
func Default() *Config {
	agents := make(map[domain.Capability]AgentConfig, len(domain.Capabilities()))
	for _, c := range domain.Capabilities() {
		agents[c] = AgentConfig{Kind: AgentSim, MinuteScale: 10 * time.Millisecond}
	}

	return &Config{
		Scheduler: SchedulerConfig{Concurrency: 4},
		Log: LogConfig{
			Level:  log.LevelInfo.String(),
			Format: log.FormatText.String(),
		},
		Telemetry: telemetry.DefaultConfig(),
		Agents:    agents,
	}
}

// Load reads a configuration file on top of Default and validates it
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound, fmt.Sprintf("config file not found: %s", path)).
				WithSuggestion("Run 'opsched config init' to write a default configuration")
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.CodeOf(err) == errors.ErrCodeConfigNotFound {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration as YAML, creating parent directories
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal config", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write config file", err)
	}

	return nil
}

// Validate checks every section and returns a CONFIG-001 error for the first problem
func (c *Config) Validate() error {
	if c.Scheduler.Concurrency < 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("scheduler.concurrency must be at least 1, got %d", c.Scheduler.Concurrency))
	}
	if c.Scheduler.ItemTimeout < 0 {
		return errors.NewConfigInvalidError("scheduler.item_timeout must not be negative")
	}

	if _, ok := validLevels[c.Log.Level]; !ok {
		return errors.NewConfigInvalidError(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.Format != log.FormatJSON.String() && c.Log.Format != log.FormatText.String() {
		return errors.NewConfigInvalidError(fmt.Sprintf("log.format %q is not one of json, text", c.Log.Format))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return errors.NewConfigInvalidError(fmt.Sprintf("telemetry.sample_rate must be within [0, 1], got %v", c.Telemetry.SampleRate))
	}

	for capability, agent := range c.Agents {
		if err := capability.Validate(); err != nil {
			return errors.NewConfigInvalidError(fmt.Sprintf("agents: %v", err))
		}
		if err := agent.Validate(); err != nil {
			return errors.NewConfigInvalidError(fmt.Sprintf("agents.%s: %v", capability, err))
		}
	}

	return nil
}

var validLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {},
}

// Validate checks the agent definition for its kind
func (a AgentConfig) Validate() error {
	switch a.Kind {
	case AgentSim:
		if a.MinuteScale < 0 {
			return fmt.Errorf("minute_scale must not be negative")
		}
	case AgentShell:
		if len(a.Command) == 0 || a.Command[0] == "" {
			return fmt.Errorf("shell agent requires a command")
		}
		if a.EscalateExitCode < 0 || a.EscalateExitCode > 255 {
			return fmt.Errorf("escalate_exit_code must be within [0, 255], got %d", a.EscalateExitCode)
		}
	default:
		return fmt.Errorf("unknown agent kind %q: must be %s or %s", a.Kind, AgentSim, AgentShell)
	}
	return nil
}
