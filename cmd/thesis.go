package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/sweater"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func applyCmd() *cobra.Command {
	var atomic bool

	command := &cobra.Command{
		Use:   "apply [file]",
		Short: "apply command blocks",
		Long: `apply the command blocks read from file, or stdin when no file is given.
Blocks are applied one by one and application stops at the first failure,
with --atomic either every block is applied or none is.`,
		Example: "sweater apply theses.txt\nsweater apply --atomic < theses.txt",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			backend, err := openBackend()
			if err != nil {
				return err
			}

			results, err := backend.Apply(context.Background(), input, atomic)
			if len(results) > 0 {
				printResults(results)
			}
			if err != nil {
				color.Red("apply failed: %v", err)
				return err
			}

			return nil
		},
	}

	command.Flags().BoolVarP(&atomic, "atomic", "a", false, "apply all blocks in a single transaction")
	command.Flags().SortFlags = false

	return command
}

func getCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "get <ref>",
		Short:   "get a thesis by id or alias",
		Example: "sweater get socrates",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend()
			if err != nil {
				return err
			}

			thesis, err := backend.Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			printThesis(thesis)
			return nil
		},
	}

	return command
}

func taggedCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "tagged <tag>",
		Short:   "list the theses carrying a tag",
		Example: "sweater tagged greek",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend()
			if err != nil {
				return err
			}

			ids, err := backend.Tagged(context.Background(), args[0])
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID"})
			for _, id := range ids {
				table.Append([]string{id})
			}
			table.Render()

			return nil
		},
	}

	return command
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func printResults(results []sweater.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Block", "Op", "ID", "Note"})
	for _, result := range results {
		table.Append([]string{strconv.Itoa(result.Block), result.Op, result.ID, note(result)})
	}
	table.Render()
}

func note(result sweater.Result) string {
	switch {
	case result.Existed:
		return "exists"
	case len(result.Removed) > 0:
		return fmt.Sprintf("removed %d", len(result.Removed))
	}
	return ""
}

func printThesis(thesis *sweater.Thesis) {
	printField("ID", thesis.ID)
	if thesis.Alias != "" {
		printField("Alias", thesis.Alias)
	}
	if len(thesis.Tags) > 0 {
		printField("Tags", strings.Join(thesis.Tags, ", "))
	}

	if text := thesis.Content.Text; text != nil {
		printField("Text", display(text))
		for i, ref := range text.References {
			printField(fmt.Sprintf("Ref %d", i+1), ref)
		}
		return
	}

	if relation := thesis.Content.Relation; relation != nil {
		printField("From", relation.From)
		printField("Kind", relation.Kind)
		printField("To", relation.To)
	}
}

// display joins the text parts with numbered placeholders for the references.
func display(text *sweater.Text) string {
	var sb strings.Builder
	for i, part := range text.Parts {
		if i > 0 {
			fmt.Fprintf(&sb, "[%d]", i)
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// exitCode is 2 for server side failures and 1 for everything else.
func exitCode(err error) int {
	var apiErr *sweater.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 500 {
		return 2
	}
	return 1
}
