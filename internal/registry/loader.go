package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"topohmm/internal/common/fsutil"
	"topohmm/internal/hmm"
	"topohmm/pkg/types"
)

// Scanner discovers model files in a directory.
type Scanner interface {
	Scan(dir string) ([]types.Model, error)
}

type fileScanner struct{}

// NewScanner returns a Scanner that accepts TMHMM (.model) and structured
// (.yaml, .yml, .json, .toml) model descriptions.
func NewScanner() Scanner { return fileScanner{} }

var modelExts = map[string]bool{".model": true, ".yaml": true, ".yml": true, ".json": true, ".toml": true}

// Scan lists model files in dir, sorted by file name. The ID is the file
// name without its extension; when two files share a stem the later one keeps
// its full file name as ID.
func (fileScanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !modelExts[ext] {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if seen[id] {
			id = name
		}
		seen[id] = true
		p := filepath.Join(abs, name)
		models = append(models, types.Model{ID: id, Name: id, Path: p, Format: string(hmm.FormatFromPath(p))})
	}
	return models, nil
}

// LoadDir scans dir with the default scanner.
func LoadDir(dir string) ([]types.Model, error) {
	return NewScanner().Scan(dir)
}

// Resolve finds ref among models by ID. A ref that is not a known ID but
// names an existing file is accepted as an ad-hoc model.
func Resolve(models []types.Model, ref string) (types.Model, bool) {
	for _, m := range models {
		if m.ID == ref {
			return m, true
		}
	}
	p, err := fsutil.ExpandHome(ref)
	if err != nil || ref == "" || !fsutil.PathExists(p) {
		return types.Model{}, false
	}
	if st, err := os.Stat(p); err != nil || st.IsDir() {
		return types.Model{}, false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return types.Model{}, false
	}
	id := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	return types.Model{ID: id, Name: id, Path: abs, Format: string(hmm.FormatFromPath(abs))}, true
}
