package manager

import (
	"time"

	"topohmm/internal/hmm"
)

// State represents lifecycle state of the manager/instances.
type State string

const (
	StateIdle     State = "idle"
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateError    State = "error"
	StateDraining State = "draining"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State  State
	Loaded []string
	Err    string
}

// Instance is one compiled model shared by every request that names it.
type Instance struct {
	ID       string
	State    State
	LastUsed time.Time
	Model    *hmm.Model
	Err      error
	served   uint64
	// loaded is closed once the load attempt finishes, successfully or not.
	loaded chan struct{}
}
