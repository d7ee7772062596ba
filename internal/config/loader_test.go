package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: ":9999"
models_dir: /tmp
default_model: tmhmm2
max_concurrent: 3
max_queue_depth: 7
tolerance: 0.01
cors_origins: [https://a.example, https://b.example]
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "/tmp", cfg.ModelsDir)
	assert.Equal(t, "tmhmm2", cfg.DefaultModel)
	assert.Equal(t, 3, cfg.MaxConcurrent)
	assert.Equal(t, 7, cfg.MaxQueueDepth)
	assert.Equal(t, 0.01, cfg.Tolerance)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","models_dir":"/m","threads":2,"predict_timeout_ms":1500,"cors_enabled":true}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	if cfg.Addr != ":7070" || cfg.ModelsDir != "/m" || cfg.Threads != 2 || cfg.PredictTimeoutMS != 1500 || !cfg.CORSEnabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nmodels_dir=\"/x\"\nmax_wait_ms=250\nlog_level=\"debug\"\nmax_body_bytes=1024\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	if cfg.Addr != ":8081" || cfg.ModelsDir != "/x" || cfg.MaxWaitMS != 250 || cfg.LogLevel != "debug" || cfg.MaxBodyBytes != 1024 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	d := t.TempDir()
	for name, doc := range map[string]string{
		"neg.yaml":   "max_concurrent: -1\n",
		"tol.yaml":   "tolerance: 1.5\n",
		"wait.yaml":  "max_wait_ms: -5\n",
		"body.yaml":  "max_body_bytes: -1\n",
		"thr.yaml":   "threads: -2\n",
		"queue.yaml": "max_queue_depth: -3\n",
	} {
		_, err := Load(writeTempFile(t, d, name, doc))
		assert.Error(t, err, name)
	}
}

func TestWithDefaults(t *testing.T) {
	t.Setenv("TOPOHMM_ADDR", "")
	t.Setenv("TOPOHMM_LOG_LEVEL", "")
	cfg := Config{}.WithDefaults()
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultModelsDir, cfg.ModelsDir)
	assert.Equal(t, DefaultMaxConcurrent, cfg.MaxConcurrent)
	assert.Equal(t, DefaultMaxQueueDepth, cfg.MaxQueueDepth)
	assert.Equal(t, DefaultMaxWaitMS, cfg.MaxWaitMS)
	assert.EqualValues(t, DefaultMaxBodyBytes, cfg.MaxBodyBytes)

	kept := Config{Addr: ":1", MaxConcurrent: 9}.WithDefaults()
	assert.Equal(t, ":1", kept.Addr)
	assert.Equal(t, 9, kept.MaxConcurrent)
}

func TestWithDefaultsEnv(t *testing.T) {
	t.Setenv("TOPOHMM_ADDR", "127.0.0.1:9000")
	t.Setenv("TOPOHMM_LOG_LEVEL", "warn")
	cfg := Config{}.WithDefaults()
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":2", Config{Addr: ":2"}.WithDefaults().Addr)
}

func TestLoadMalformed(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"bad.yaml": "addr: :8080\n: broken\n",
		"bad.json": `{ "addr": ":8080", "models_dir": }`,
		"bad.toml": "addr=:8080\nmodels_dir\n",
	}
	for name, doc := range cases {
		_, err := Load(writeTempFile(t, d, name, doc))
		assert.Error(t, err, name)
	}
	_, err := Load("/definitely/not/a/real/file-12345.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
