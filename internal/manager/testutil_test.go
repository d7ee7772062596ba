package manager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"topohmm/pkg/types"
)

// strictModel declares X as an explicit symbol no state emits, so sequences
// containing X are impossible.
const strictModel = `name: strict
alphabet: HP
wildcard: X
states:
  - {name: in, label: i, start: 1.0, emissions: {H: 0.5, P: 0.5, X: 0.0}}
transitions:
  - {from: in, to: in, p: 1.0}
`

func topoPath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "hmm", "testdata", "topo.yaml"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	return p
}

func writeModel(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// newTestManager builds a manager over the topo fixture (ID "topo", the
// default) and the strict model (ID "strict").
func newTestManager(t *testing.T, cfg ManagerConfig) *Manager {
	t.Helper()
	cfg.Registry = append(cfg.Registry,
		types.Model{ID: "topo", Name: "topo", Path: topoPath(t), Format: "yaml"},
		types.Model{ID: "strict", Name: "strict", Path: writeModel(t, "strict.yaml", strictModel), Format: "yaml"},
	)
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "topo"
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}
	return NewWithConfig(cfg)
}

func writeFile(p, body string) error { return os.WriteFile(p, []byte(body), 0o644) }
