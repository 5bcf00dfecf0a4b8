package main

import (
	"fmt"

	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/segment"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps [name]",
	Short: "List the scenario steps, or print one step",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		docs, err := docstore.LoadDir(cmd.Context(), cfg.Dir)
		if err != nil {
			return fmt.Errorf("error loading scenario: %w", err)
		}

		seg := segment.New(segment.WithKeyword(cfg.StepKeyword), segment.WithMarkers(cfg.StepMarkers...))
		out := cmd.OutOrStdout()

		doc, ok := seg.SelectDocument(docs.All())
		if len(args) == 0 {
			if ok {
				fmt.Fprintf(out, "# %s\n", doc.Name)
			}
			for i, name := range seg.Catalog(docs.All()) {
				fmt.Fprintf(out, "%2d. %s\n", i+1, name)
			}
			return nil
		}

		if !ok {
			return fmt.Errorf("no steps document in %s", cfg.Dir)
		}
		step, found := seg.Resolve(doc.Content, args[0])
		if !found {
			return fmt.Errorf("step %q not found in %s", args[0], doc.Name)
		}
		fmt.Fprintf(out, "%s (lines %d-%d)\n\n", step.Name, step.StartLine+1, step.EndLine)
		for _, line := range step.DescriptionLines {
			fmt.Fprintln(out, line)
		}
		if step.Table != nil {
			fmt.Fprintln(out)
			for _, row := range step.Table.Rows() {
				fmt.Fprintln(out, row)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stepsCmd)
}
