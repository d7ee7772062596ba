package manager

import (
	"context"
	"time"
)

// testHookQueued runs after a request holds its queue slot, before the
// draining re-check.
var testHookQueued func()

// beginPrediction reserves a queue slot and then a decoding slot. Returns a
// release func to be deferred.
func (m *Manager) beginPrediction(ctx context.Context) (func(), error) {
	m.mu.RLock()
	draining := m.draining
	m.mu.RUnlock()
	if draining {
		admissionRejections.WithLabelValues("draining").Inc()
		return func() {}, tooBusyError{reason: "draining"}
	}
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case m.queueCh <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		admissionRejections.WithLabelValues("queue_full").Inc()
		return func() {}, tooBusyError{reason: "queue_full"}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-m.queueCh
		}
	}()
	if testHookQueued != nil {
		testHookQueued()
	}
	// Drain may have started after the first check but before the queue slot
	// was taken; it counts queueCh, so re-checking here closes that window.
	m.mu.RLock()
	draining = m.draining
	m.mu.RUnlock()
	if draining {
		admissionRejections.WithLabelValues("draining").Inc()
		return func() {}, tooBusyError{reason: "draining"}
	}
	select {
	case m.slotCh <- struct{}{}:
		acquired = true
		predictInflight.Inc()
		return func() {
			predictInflight.Dec()
			<-m.slotCh
			<-m.queueCh
		}, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		admissionRejections.WithLabelValues("wait_timeout").Inc()
		return func() {}, tooBusyError{reason: "wait_timeout"}
	}
}
