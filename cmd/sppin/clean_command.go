package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sppin/internal/names"
)

func newCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "clean <name>...",
		Short:       "Print the cleaned form of each name",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, raw := range args {
				fmt.Fprintln(out, names.Clean(raw))
			}
			return nil
		},
	}
}
