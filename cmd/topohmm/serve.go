package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"topohmm/internal/httpapi"
	"topohmm/internal/manager"
	"topohmm/internal/registry"
)

// shutdownGrace bounds draining admitted predictions and closing connections.
const shutdownGrace = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var cors string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve predictions over HTTP",
		Example: "  topohmm serve --models-dir ~/models/topohmm --default-model TMHMM2.0",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("cors-origins") {
				a.cfg.CORSEnabled = true
				a.cfg.CORSOrigins = splitCSV(cors)
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
	// Flag values land in a.cfg only when set; PersistentPreRunE has
	// already filled it from the config file and defaults.
	fl := cmd.Flags()
	bindString(cmd, "addr", &a.cfg.Addr, "HTTP listen address, e.g. :8080 (defaults TOPOHMM_ADDR)")
	bindString(cmd, "models-dir", &a.cfg.ModelsDir, "Directory to scan for model files")
	bindString(cmd, "default-model", &a.cfg.DefaultModel, "Model id used when a request omits model")
	bindInt(cmd, "max-concurrent", &a.cfg.MaxConcurrent, "Predictions decoded at once")
	bindInt(cmd, "max-queue-depth", &a.cfg.MaxQueueDepth, "Predictions allowed to wait for a slot")
	bindInt(cmd, "max-wait-ms", &a.cfg.MaxWaitMS, "Longest a prediction waits for admission")
	bindInt(cmd, "predict-timeout-ms", &a.cfg.PredictTimeoutMS, "Per-request prediction timeout (0 disables)")
	fl.StringVar(&cors, "cors-origins", "", "Enable CORS for these comma-separated origins")
	return cmd
}

// bindString registers a flag whose value is copied into dst only when the
// user sets it, so config file values survive unset flags.
func bindString(cmd *cobra.Command, name string, dst *string, usage string) {
	v := cmd.Flags().String(name, "", usage)
	prev := cmd.PreRunE
	cmd.PreRunE = func(c *cobra.Command, args []string) error {
		if prev != nil {
			if err := prev(c, args); err != nil {
				return err
			}
		}
		if c.Flags().Changed(name) {
			*dst = *v
		}
		return nil
	}
}

func bindInt(cmd *cobra.Command, name string, dst *int, usage string) {
	v := cmd.Flags().Int(name, 0, usage)
	prev := cmd.PreRunE
	cmd.PreRunE = func(c *cobra.Command, args []string) error {
		if prev != nil {
			if err := prev(c, args); err != nil {
				return err
			}
		}
		if c.Flags().Changed(name) {
			*dst = *v
		}
		return nil
	}
}

func (a *app) newManager() (*manager.Manager, error) {
	reg, err := registry.LoadDir(a.cfg.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		Registry:      reg,
		DefaultModel:  a.cfg.DefaultModel,
		MaxConcurrent: a.cfg.MaxConcurrent,
		MaxQueueDepth: a.cfg.MaxQueueDepth,
		MaxWait:       time.Duration(a.cfg.MaxWaitMS) * time.Millisecond,
		Tolerance:     a.cfg.Tolerance,
		Logger:        a.log,
		Publisher:     manager.LogPublisher{Logger: a.log},
	}), nil
}

// configureHTTP pushes config values into the httpapi package settings.
func (a *app) configureHTTP() {
	httpapi.SetLogger(a.log)
	httpapi.SetDefaultLogLevel(a.cfg.LogLevel)
	httpapi.SetMaxBodyBytes(a.cfg.MaxBodyBytes)
	httpapi.SetPredictTimeout(time.Duration(a.cfg.PredictTimeoutMS) * time.Millisecond)
	httpapi.SetCORSOptions(a.cfg.CORSEnabled, a.cfg.CORSOrigins, nil, nil)
}

func (a *app) serve(ctx context.Context) error {
	mgr, err := a.newManager()
	if err != nil {
		return err
	}
	mgr.Preload()
	a.configureHTTP()

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.cfg.Addr).Str("models_dir", a.cfg.ModelsDir).
			Int("models", len(mgr.ListModels())).Msg("topohmm listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := mgr.Drain(sctx); err != nil {
		a.log.Warn().Err(err).Msg("drain incomplete")
		cancelBase()
	}
	if err := srv.Shutdown(sctx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}
