package cmd

import (
	"context"
	"fmt"

	"github.com/emrgen/sweater/internal/jobs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var output string

	command := &cobra.Command{
		Use:     "export",
		Short:   "export the graph as graphviz dot",
		Example: "sweater export -o graph.dot\nsweater export | dot -Tsvg > graph.svg",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend()
			if err != nil {
				return err
			}

			graph, err := backend.Graph(context.Background())
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), graph)
				return err
			}

			if err := jobs.WriteFileAtomic(output, []byte(graph)); err != nil {
				return err
			}
			color.Green("graph written to %s", output)

			return nil
		},
	}

	command.Flags().StringVarP(&output, "output", "o", "", "file to write the graph to, stdout when empty")

	return command
}
