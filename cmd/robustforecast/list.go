package main

import (
	"fmt"

	"github.com/aouyang1/go-robustforecast/decomposition"
	"github.com/aouyang1/go-robustforecast/periodicity"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered periodicity detectors and decomposition estimators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "pd_detector:")
			for _, name := range periodicity.Names() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "stl_detector:")
			for _, name := range decomposition.Names() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
