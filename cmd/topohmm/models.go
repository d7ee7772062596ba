package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"topohmm/internal/hmm"
	"topohmm/internal/registry"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models found in the models directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := registry.LoadDir(a.cfg.ModelsDir)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFORMAT\tPATH")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Format, m.Path)
			}
			return tw.Flush()
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Validate a model file and print its shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModelFile(args[0], format)
			if err != nil {
				return err
			}
			return describeModel(cmd.OutOrStdout(), m)
		},
	}
	cmd.Flags().StringVar(&format, "model-format", "", "Model file syntax: tmhmm|yaml|json|toml (default from the file extension)")
	return cmd
}

func describeModel(w io.Writer, m *hmm.Model) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "name\t%s\n", m.Name())
	fmt.Fprintf(tw, "alphabet\t%s (%d symbols + wildcard)\n", m.Alphabet().Symbols(), m.Alphabet().Len())
	fmt.Fprintf(tw, "states\t%d\n", m.NumStates())
	fmt.Fprintf(tw, "transitions\t%d\n", m.NumTransitions())
	for c := hmm.Class(0); c < hmm.NumClasses; c++ {
		fmt.Fprintf(tw, "%s states\t%d\n", c, len(m.Group(c)))
	}
	return tw.Flush()
}
