package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topohmm/internal/output"
	"topohmm/pkg/types"
)

func topoModel(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "..", "internal", "hmm", "testdata", "topo.yaml"))
	require.NoError(t, err)
	return p
}

func helixSeq() string {
	return strings.Repeat("K", 10) + strings.Repeat("L", 20) + strings.Repeat("K", 10)
}

func writeFasta(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.fa")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// run executes the CLI with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestPredictFiles(t *testing.T) {
	in := writeFasta(t, ">p1 first protein\n"+helixSeq()+"\n>p2\n"+strings.Repeat("K", 25)+"\n")
	outDir := filepath.Join(t.TempDir(), "out")

	_, _, err := run(t, "predict", "-f", in, "-m", topoModel(t), "-o", outDir, "--threads", "2", "--log-level", "off")
	require.NoError(t, err)

	for _, name := range []string{"p1.summary", "p1.annotation", "p1.plot", "p2.summary", "p2.annotation", "p2.plot"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	sum, err := os.ReadFile(filepath.Join(outDir, "p1.summary"))
	require.NoError(t, err)
	assert.Equal(t, "0 9 inside\n10 29 transmembrane helix\n30 39 outside\n", string(sum))

	fh, err := os.Open(filepath.Join(outDir, "p1.plot"))
	require.NoError(t, err)
	defer fh.Close()
	post, err := output.ReadPosterior(fh)
	require.NoError(t, err)
	rows, cols := post.Dims()
	assert.Equal(t, 40, rows)
	assert.Equal(t, 3, cols)
}

func TestPredictNoPosterior(t *testing.T) {
	in := writeFasta(t, ">p1\n"+helixSeq()+"\n")
	outDir := t.TempDir()
	_, _, err := run(t, "predict", "-f", in, "-m", topoModel(t), "-o", outDir, "--no-posterior", "--log-level", "off")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "p1.annotation"))
	assert.NoFileExists(t, filepath.Join(outDir, "p1.plot"))
}

func TestPredictJSON(t *testing.T) {
	in := writeFasta(t, ">p1 desc\n"+helixSeq()+"\n>p2\nKKKK\n")
	stdout, _, err := run(t, "predict", "-f", in, "-m", topoModel(t), "--format", "json", "--log-level", "off")
	require.NoError(t, err)

	var results []types.SequenceResult
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		var r types.SequenceResult
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		results = append(results, r)
	}
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, "desc", results[0].Description)
	assert.Equal(t, "i11-30o", results[0].Stats.Topology)
	assert.Len(t, results[0].Posterior, 40)
	assert.Equal(t, "p2", results[1].ID)
}

func TestPredictModelFromModelsDir(t *testing.T) {
	dir := t.TempDir()
	b, err := os.ReadFile(topoModel(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.yaml"), b, 0o644))
	cfgPath := filepath.Join(t.TempDir(), "topohmm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("models_dir: "+dir+"\ndefault_model: demo\nlog_level: off\n"), 0o644))

	in := writeFasta(t, ">p1\n"+helixSeq()+"\n")
	stdout, _, err := run(t, "--config", cfgPath, "predict", "-f", in, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"topology":"i11-30o"`)

	stdout, _, err = run(t, "--config", cfgPath, "models")
	require.NoError(t, err)
	assert.Contains(t, stdout, "demo")
	assert.Contains(t, stdout, "yaml")
}

func TestPredictErrors(t *testing.T) {
	in := writeFasta(t, ">p1\n"+helixSeq()+"\n")
	cases := map[string][]string{
		"missing file flag": {"predict", "-m", topoModel(t)},
		"unknown model":     {"predict", "-f", in, "-m", "no-such-model", "--log-level", "off"},
		"no model":          {"predict", "-f", in, "--log-level", "off"},
		"bad format":        {"predict", "-f", in, "-m", topoModel(t), "--format", "xml"},
		"missing fasta":     {"predict", "-f", filepath.Join(t.TempDir(), "none.fa"), "-m", topoModel(t)},
		"bad log level":     {"predict", "-f", in, "-m", topoModel(t), "--log-level", "loud"},
		"bad config":        {"--config", filepath.Join(t.TempDir(), "none.yaml"), "models"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("TOPOHMM_LOG_LEVEL", "")
			_, _, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestPredictDuplicateIDFails(t *testing.T) {
	in := writeFasta(t, ">p1\nKKKK\n>p1\nLLLL\n")
	_, _, err := run(t, "predict", "-f", in, "-m", topoModel(t), "-o", t.TempDir(), "--log-level", "off")
	assert.Error(t, err)
}

func TestModelInspect(t *testing.T) {
	stdout, _, err := run(t, "model", "inspect", topoModel(t), "--log-level", "off")
	require.NoError(t, err)
	assert.Contains(t, stdout, "topo-demo")
	assert.Contains(t, stdout, "states")
	assert.Contains(t, stdout, "membrane states")

	_, _, err = run(t, "model", "inspect", filepath.Join(t.TempDir(), "x.yaml"))
	assert.Error(t, err)
}

func TestModelFormatOverridesExtension(t *testing.T) {
	b, err := os.ReadFile(topoModel(t))
	require.NoError(t, err)
	txt := filepath.Join(t.TempDir(), "topo.txt")
	require.NoError(t, os.WriteFile(txt, b, 0o644))

	stdout, _, err := run(t, "model", "inspect", txt, "--model-format", "yml", "--log-level", "off")
	require.NoError(t, err)
	assert.Contains(t, stdout, "topo-demo")

	in := writeFasta(t, ">p1\n"+helixSeq()+"\n")
	stdout, _, err = run(t, "predict", "-f", in, "-m", txt, "--model-format", "yaml", "--format", "json", "--log-level", "off")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"p1"`)

	_, _, err = run(t, "model", "inspect", txt, "--model-format", "xml", "--log-level", "off")
	assert.ErrorContains(t, err, "unsupported model format")
	_, _, err = run(t, "predict", "-f", in, "-m", txt, "--model-format", "json", "--log-level", "off")
	assert.Error(t, err)
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "topohmm.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("addr = \":9000\"\nmax_concurrent = 2\nmax_queue_depth = 7\n"), 0o644))

	a := &app{}
	root := newRootCmdWith(a)
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	// Stop before the server starts; only flag handling is under test.
	serve.RunE = func(cmd *cobra.Command, args []string) error { return nil }
	root.SetArgs([]string{"--config", cfgPath, "--log-level", "off", "serve", "--max-concurrent", "6", "--default-model", "demo"})
	require.NoError(t, root.Execute())

	assert.Equal(t, ":9000", a.cfg.Addr)
	assert.Equal(t, 6, a.cfg.MaxConcurrent)
	assert.Equal(t, 7, a.cfg.MaxQueueDepth)
	assert.Equal(t, "demo", a.cfg.DefaultModel)
	assert.Equal(t, "off", a.cfg.LogLevel)
}

func TestConfigureHTTPAndManager(t *testing.T) {
	dir := t.TempDir()
	b, err := os.ReadFile(topoModel(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.yaml"), b, 0o644))

	a := &app{}
	require.NoError(t, a.setup(io.Discard))
	a.cfg.ModelsDir = dir
	a.cfg.DefaultModel = "demo"
	mgr, err := a.newManager()
	require.NoError(t, err)
	a.configureHTTP()

	models := mgr.ListModels()
	require.Len(t, models, 1)
	assert.Equal(t, "demo", models[0].ID)
	assert.Equal(t, "demo", mgr.DefaultModel())

	a.cfg.ModelsDir = filepath.Join(dir, "missing")
	_, err = a.newManager()
	assert.Error(t, err)
}
