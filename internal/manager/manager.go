package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"topohmm/pkg/types"
)

type Manager struct {
	mu           sync.RWMutex
	state        State
	err          string
	registry     []types.Model
	defaultModel string
	tolerance    float64
	instances    map[string]*Instance
	draining     bool

	// Admission
	maxConcurrent int
	maxQueueDepth int
	maxWait       time.Duration
	queueCh       chan struct{}
	slotCh        chan struct{}

	log       zerolog.Logger
	pub       EventPublisher
	startTime time.Time

	loadsTotal     atomic.Uint64
	sequencesTotal atomic.Uint64
}

// New builds a Manager over reg with package defaults for everything else.
func New(reg []types.Model, defaultModel string) *Manager {
	return NewWithConfig(ManagerConfig{Registry: reg, DefaultModel: defaultModel})
}

// SetEventPublisher replaces the publisher; nil restores the no-op one.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.pub = p
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.pub
	m.mu.RUnlock()
	p.Publish(e)
}

// Ready reports whether the manager can serve: not draining and either a
// model is loaded or one can be loaded on demand. A failed load only affects
// its own model.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.draining {
		return false
	}
	for _, inst := range m.instances {
		if inst.State == StateReady {
			return true
		}
	}
	return len(m.registry) > 0
}

func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	for i := range out {
		if inst, ok := m.instances[out[i].ID]; ok && inst.Model != nil {
			out[i].States = inst.Model.NumStates()
			if n := inst.Model.Name(); n != "" {
				out[i].Name = n
			}
		}
	}
	return out
}

// DefaultModel returns the model used when a request names none.
func (m *Manager) DefaultModel() string { return m.defaultModel }

func (m *Manager) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// refreshStateLocked derives the manager state from its instances. Any
// loading instance wins, then any ready one; with none left the last load
// error decides. Callers hold m.mu.
func (m *Manager) refreshStateLocked() {
	loading, ready := false, false
	for _, inst := range m.instances {
		switch inst.State {
		case StateLoading:
			loading = true
		case StateReady:
			ready = true
		}
	}
	switch {
	case loading:
		m.state = StateLoading
	case ready:
		m.state = StateReady
	case m.err != "":
		m.state = StateError
	default:
		m.state = StateIdle
	}
}
