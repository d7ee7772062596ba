package manager

import (
	"context"
	"time"
)

// Preload loads the given models (the default model when none are named) in
// the background. Failures are logged and visible in Status; a later request
// retries the load.
func (m *Manager) Preload(ids ...string) {
	if len(ids) == 0 {
		if m.defaultModel == "" {
			return
		}
		ids = []string{m.defaultModel}
	}
	for _, id := range ids {
		go func(id string) {
			if _, err := m.EnsureInstance(context.Background(), id); err != nil {
				m.log.Warn().Err(err).Str("model", id).Msg("preload failed")
			}
		}(id)
	}
}

// drainPoll is how often Drain checks for admitted requests.
const drainPoll = 10 * time.Millisecond

// Drain stops admitting new predictions and waits until every admitted
// request, decoding or queued, has released its slot, or ctx is done.
func (m *Manager) Drain(ctx context.Context) error {
	m.mu.Lock()
	m.draining = true
	m.mu.Unlock()
	m.publish(Event{Name: EventDrainStart})

	start := time.Now()
	tick := time.NewTicker(drainPoll)
	defer tick.Stop()
	for len(m.queueCh) > 0 {
		select {
		case <-tick.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.publish(Event{Name: EventDrainDone, Fields: map[string]any{"dur": time.Since(start)}})
	return nil
}
