package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"topohmm/internal/config"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&app{}) }

// newRootCmdWith builds the command tree around a.
func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "topohmm",
		Short:         "Transmembrane topology prediction with hidden Markov models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (.yaml|.yml|.json|.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (defaults TOPOHMM_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd.ErrOrStderr())
	}

	modelCmd := &cobra.Command{Use: "model", Short: "Model file utilities"}
	modelCmd.AddCommand(newInspectCmd(a))
	root.AddCommand(newPredictCmd(a), newServeCmd(a), newModelsCmd(a), modelCmd)
	return root
}

// setup loads the config file, applies defaults and builds the logger.
func (a *app) setup(stderr io.Writer) error {
	var cfg config.Config
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg.WithDefaults()
	lvl, err := parseLogLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = newLogger(stderr, lvl)
	return nil
}

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

func parseLogLevel(s string) (zerolog.Level, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "off", "disabled":
		return zerolog.Disabled, nil
	case "warning":
		return zerolog.WarnLevel, nil
	default:
		lvl, err := zerolog.ParseLevel(v)
		if err != nil {
			return zerolog.NoLevel, fmt.Errorf("invalid log level %q", s)
		}
		return lvl, nil
	}
}

// splitCSV parses a comma-separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
