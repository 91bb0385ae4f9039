package cmd

import (
	"errors"
	"strings"

	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/server"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var options server.Options

	var required = []string{"export-cron", "export-file"}

	command := &cobra.Command{
		Use:     "serve",
		Short:   "start the http server",
		Example: `sweater serve --export-cron "@every 5m" --export-file graph.dot`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the export job needs both flags, or neither
			if cmd.Flags().Changed("export-cron") || cmd.Flags().Changed("export-file") {
				if checkMissingFlags(cmd, required) {
					return errors.New("incomplete export flags")
				}
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			return server.NewServer(cfg, options).Start()
		},
	}

	command.Flags().StringVar(&options.ExportCron, "export-cron", "", "cron schedule of the periodic graph export")
	command.Flags().StringVar(&options.ExportFile, "export-file", "", "file the periodic graph export is written to")
	command.Flags().SortFlags = false

	return command
}

// checkMissingFlags reports the required flags that are not set, it returns true when any is missing
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missing []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missing = append(missing, "--"+required)
		}
	}

	if len(missing) > 0 {
		color.Red("missing required flags: %s", strings.Join(missing, " "))
		_ = cmd.Usage()
		return true
	}

	return false
}
