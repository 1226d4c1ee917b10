package exec

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/opsched/internal/domain"
	"github.com/felixgeelhaar/opsched/internal/errors"
	"github.com/felixgeelhaar/opsched/internal/plan"
)

// Registry maps each capability to the agent that executes it
type Registry struct {
	mu     sync.RWMutex
	agents map[domain.Capability]Agent
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{agents: make(map[domain.Capability]Agent)}
}

// Register binds capability to agent, replacing any previous binding
func (r *Registry) Register(capability domain.Capability, agent Agent) error {
	if err := capability.Validate(); err != nil {
		return fmt.Errorf("register agent: %w", err)
	}
	if agent == nil {
		return fmt.Errorf("register agent: nil agent for capability %s", capability)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[capability] = agent
	return nil
}

// Lookup returns the agent bound to capability
func (r *Registry) Lookup(capability domain.Capability) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[capability]
	return agent, ok
}

// Capabilities returns the bound capabilities in the domain's stable order
func (r *Registry) Capabilities() []domain.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bound []domain.Capability
	for _, c := range domain.Capabilities() {
		if _, ok := r.agents[c]; ok {
			bound = append(bound, c)
		}
	}
	return bound
}

// Binding is the per-item agent table of one plan, resolved before anything runs
type Binding map[string]Agent

// Bind resolves the agent of every item in p. The first item whose
// capability has no agent fails the bind with EXEC-006.
func (r *Registry) Bind(p *plan.ExecutionPlan) (Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding := make(Binding, len(p.Items()))
	for _, item := range p.Items() {
		agent, ok := r.agents[item.Capability]
		if !ok {
			return nil, errors.NewCapabilityUnboundError(string(item.Capability), item.ID)
		}
		binding[item.ID] = agent
	}
	return binding, nil
}
