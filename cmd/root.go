package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverAddress string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sweater",
	Short: "thesis graph tool",
	Example: `sweater db migrate
sweater apply theses.txt
sweater apply --atomic < theses.txt
sweater get socrates
sweater tagged greek
sweater export -o graph.dot
sweater serve --export-cron "@every 1m" --export-file graph.dot`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "address of a running sweater server, the local database is used when empty")

	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(taggedCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
