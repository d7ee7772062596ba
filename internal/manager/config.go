package manager

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"topohmm/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry     []types.Model
	DefaultModel string
	// MaxConcurrent bounds predictions decoding at once; 0 means GOMAXPROCS.
	MaxConcurrent int
	MaxQueueDepth int
	MaxWait       time.Duration
	// Tolerance is passed to the model compiler; 0 keeps its default.
	Tolerance float64
	Logger    zerolog.Logger
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:        StateIdle,
		registry:     cfg.Registry,
		defaultModel: cfg.DefaultModel,
		tolerance:    cfg.Tolerance,
		instances:    make(map[string]*Instance),
		log:          cfg.Logger,
		pub:          cfg.Publisher,
		startTime:    time.Now(),
	}
	if m.pub == nil {
		m.pub = noopPublisher{}
	}
	m.maxConcurrent = cfg.MaxConcurrent
	if m.maxConcurrent <= 0 {
		m.maxConcurrent = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	// queueCh counts every admitted request, decoding or waiting.
	m.queueCh = make(chan struct{}, m.maxConcurrent+m.maxQueueDepth)
	m.slotCh = make(chan struct{}, m.maxConcurrent)
	return m
}
