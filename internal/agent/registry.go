package agent

import (
	"fmt"

	"github.com/felixgeelhaar/opsched/internal/config"
	"github.com/felixgeelhaar/opsched/internal/domain"
	"github.com/felixgeelhaar/opsched/internal/exec"
)

// New builds the agent described by cfg
func New(cfg config.AgentConfig) (exec.Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case config.AgentShell:
		return &Shell{Command: cfg.Command, EscalateExitCode: cfg.EscalateExitCode}, nil
	default:
		return NewSim(cfg.MinuteScale, cfg.Fail, cfg.Escalate), nil
	}
}

// NewRegistry binds an agent to every configured capability
func NewRegistry(agents map[domain.Capability]config.AgentConfig) (*exec.Registry, error) {
	registry := exec.NewRegistry()
	for _, capability := range domain.Capabilities() {
		cfg, ok := agents[capability]
		if !ok {
			continue
		}

		a, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("agent for %s: %w", capability, err)
		}
		if err := registry.Register(capability, a); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
