package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"topohmm/internal/batch"
	"topohmm/internal/common/fsutil"
	"topohmm/internal/fasta"
	"topohmm/internal/hmm"
	"topohmm/internal/output"
	"topohmm/internal/registry"
)

type predictFlags struct {
	fastaPath   string
	model       string
	modelFormat string
	outDir      string
	threads     int
	noPosterior bool
	format      string
}

func newPredictCmd(a *app) *cobra.Command {
	var f predictFlags
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict topologies for every record of a FASTA file",
		Example: "  topohmm predict -f seqs.fa -m TMHMM2.0\n" +
			"  topohmm predict -f seqs.fa.gz -m ./TMHMM2.0.model -o out --threads 8\n" +
			"  cat seqs.fa | topohmm predict -f - -m TMHMM2.0 --format json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.predict(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.fastaPath, "file", "f", "", "FASTA input (- for stdin, .gz is decompressed)")
	fl.StringVarP(&f.model, "model", "m", "", "Model id from the models directory, or a model file path")
	fl.StringVar(&f.modelFormat, "model-format", "", "Model file syntax: tmhmm|yaml|json|toml (default from the file extension)")
	fl.StringVarP(&f.outDir, "out", "o", ".", "Output directory for the files format")
	fl.IntVar(&f.threads, "threads", 0, "Worker goroutines (0 = config threads or CPU count)")
	fl.BoolVar(&f.noPosterior, "no-posterior", false, "Skip posterior decoding and the .plot file")
	fl.StringVar(&f.format, "format", "files", "Output format: files|json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) predict(ctx context.Context, stdout io.Writer, f predictFlags) error {
	if f.format != "files" && f.format != "json" {
		return fmt.Errorf("unknown output format %q (want files or json)", f.format)
	}
	m, err := a.loadModel(f.model, f.modelFormat)
	if err != nil {
		return err
	}

	in, err := fasta.Open(f.fastaPath)
	if err != nil {
		return err
	}
	defer in.Close()

	threads := f.threads
	if threads <= 0 {
		threads = a.cfg.Threads
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	cfg := batch.Config{Threads: threads, Posterior: !f.noPosterior, Logger: a.log}

	var (
		records, failed int
		visit           func(batch.Item) error
	)
	switch f.format {
	case "json":
		jw := output.NewJSONWriter(stdout)
		visit = func(it batch.Item) error {
			records++
			if it.Err != nil {
				failed++
				return jw.Write(output.ErrorResult(it.Record, it.Err))
			}
			return jw.Write(output.Result(it.Record, it.Prediction))
		}
	default:
		if err := fsutil.EnsureDir(f.outDir); err != nil {
			return err
		}
		visit = func(it batch.Item) error {
			records++
			if it.Err != nil {
				failed++
				a.log.Warn().Str("id", it.Record.ID).Err(it.Err).Msg("record skipped")
				return nil
			}
			written, err := output.WriteFiles(f.outDir, it.Record, it.Prediction)
			if err != nil {
				return err
			}
			a.log.Debug().Str("id", it.Record.ID).Str("topology", it.Prediction.Stats.Topology).Strs("files", written).Msg("record done")
			return nil
		}
	}

	start := time.Now()
	if err := batch.Run(ctx, cfg, m, fasta.NewReader(in), visit); err != nil {
		return err
	}
	a.log.Info().Str("model", m.Name()).Int("records", records).Int("failed", failed).
		Int("threads", threads).Dur("dur", time.Since(start)).Msg("predict done")
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, records)
	}
	return nil
}

// loadModel resolves ref against the models directory, falling back to the
// configured default model. A ref naming a file is loaded directly. A
// non-empty format overrides the one implied by the file extension.
func (a *app) loadModel(ref, format string) (*hmm.Model, error) {
	if ref == "" {
		ref = a.cfg.DefaultModel
	}
	if ref == "" {
		return nil, fmt.Errorf("no model given: pass -m or set default_model")
	}
	models, err := registry.LoadDir(a.cfg.ModelsDir)
	if err != nil {
		a.log.Debug().Err(err).Str("dir", a.cfg.ModelsDir).Msg("models dir unavailable")
	}
	desc, ok := registry.Resolve(models, ref)
	if !ok {
		return nil, fmt.Errorf("model %q is neither a known id in %s nor a file", ref, a.cfg.ModelsDir)
	}
	start := time.Now()
	m, err := a.loadModelFile(desc.Path, format)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("model", desc.ID).Str("path", desc.Path).Int("states", m.NumStates()).
		Dur("dur", time.Since(start)).Msg("model loaded")
	return m, nil
}

func (a *app) loadModelFile(path, format string) (*hmm.Model, error) {
	opts := hmm.Options{Tolerance: a.cfg.Tolerance}
	if format == "" {
		return hmm.LoadFile(path, opts)
	}
	f, err := hmm.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	opts.Source = path
	return hmm.Load(fh, f, opts)
}
