package manager

import (
	"sort"
	"time"

	"topohmm/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{State: m.state, Err: m.err}
	if m.draining {
		s.State = StateDraining
	}
	for id, inst := range m.instances {
		if inst.State == StateReady {
			s.Loaded = append(s.Loaded, id)
		}
	}
	sort.Strings(s.Loaded)
	return s
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	inflight := len(m.slotCh)
	resp := types.StatusResponse{
		Inflight:       inflight,
		QueueLen:       max(len(m.queueCh)-inflight, 0),
		MaxConcurrent:  m.maxConcurrent,
		MaxQueueDepth:  m.maxQueueDepth,
		LastError:      m.err,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		LoadsTotal:     m.loadsTotal.Load(),
		SequencesTotal: m.sequencesTotal.Load(),
		State:          string(m.state),
	}
	if m.draining {
		resp.State = string(StateDraining)
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(m.instances))
	for _, inst := range m.instances {
		st := types.InstanceStatus{
			ModelID:  inst.ID,
			State:    string(inst.State),
			LastUsed: inst.LastUsed.Unix(),
			Served:   inst.served,
		}
		if inst.Model != nil {
			st.States = inst.Model.NumStates()
		}
		if inst.Err != nil {
			st.Error = inst.Err.Error()
		}
		resp.Instances = append(resp.Instances, st)
	}
	sort.Slice(resp.Instances, func(i, j int) bool { return resp.Instances[i].ModelID < resp.Instances[j].ModelID })
	return resp
}
