package manager

import (
	"context"
	"time"

	"topohmm/internal/hmm"
)

// EnsureInstance returns the compiled model for modelID, loading it on first
// use. Concurrent callers for the same model wait for a single load. A failed
// load is forgotten so a later call can retry.
func (m *Manager) EnsureInstance(ctx context.Context, modelID string) (*Instance, error) {
	if modelID == "" {
		modelID = m.defaultModel
		if modelID == "" {
			return nil, ErrBadRequest("no model specified and no default configured")
		}
	}
	mdl, ok := m.getModelByID(modelID)
	if !ok {
		return nil, ErrModelNotFound(modelID)
	}

	m.mu.Lock()
	inst, existed := m.instances[modelID]
	if !existed {
		inst = &Instance{ID: modelID, State: StateLoading, loaded: make(chan struct{})}
		m.instances[modelID] = inst
		m.refreshStateLocked()
	}
	m.mu.Unlock()

	if existed {
		select {
		case <-inst.loaded:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if inst.Err != nil {
			return nil, inst.Err
		}
		inst.LastUsed = time.Now()
		return inst, nil
	}

	// This caller owns the load.
	m.publish(Event{Name: EventEnsureStart, ModelID: modelID, Fields: map[string]any{"path": mdl.Path}})
	start := time.Now()
	compiled, err := hmm.LoadFile(mdl.Path, hmm.Options{Tolerance: m.tolerance})
	dur := time.Since(start)

	m.mu.Lock()
	if err != nil {
		inst.State = StateError
		inst.Err = err
		delete(m.instances, modelID)
		m.err = err.Error()
	} else {
		inst.State = StateReady
		inst.Model = compiled
		inst.LastUsed = time.Now()
	}
	m.refreshStateLocked()
	close(inst.loaded)
	m.mu.Unlock()

	if err != nil {
		modelLoads.WithLabelValues(modelID, "error").Inc()
		m.log.Error().Err(err).Str("model", modelID).Str("path", mdl.Path).Msg("model load failed")
		m.publish(Event{Name: EventEnsureError, ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
		return nil, err
	}
	m.loadsTotal.Add(1)
	modelLoads.WithLabelValues(modelID, "ok").Inc()
	m.log.Info().Str("model", modelID).Int("states", compiled.NumStates()).
		Int("transitions", compiled.NumTransitions()).Dur("dur", dur).Msg("model loaded")
	m.publish(Event{Name: EventEnsureReady, ModelID: modelID, Fields: map[string]any{"states": compiled.NumStates(), "dur": dur}})
	return inst, nil
}
