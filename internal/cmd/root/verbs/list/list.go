package list

import (
	"context"
	"fmt"
	"io"

	cmdpkg "github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/cmd/output/tableview"
	"github.com/kong/dashctl/internal/cmd/root/verbs"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/meta"
	"github.com/kong/dashctl/internal/theme"
	"github.com/kong/dashctl/internal/util/i18n"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.List
)

var (
	listUse = Verb.String()

	listShort = i18n.T("root.verbs.list.listShort", "List datasets, themes and profiles")

	listLong = normalizers.LongDesc(i18n.T("root.verbs.list.listLong",
		`Use list to see what can be viewed and how it can be shown.

A sub-command selects what to list. Output can be formatted as a table, JSON
or YAML.`))

	listExamples = normalizers.Examples(i18n.T("root.verbs.list.listExamples",
		fmt.Sprintf(`
		# List the built-in datasets and those in the dataset directory
		%[1]s list datasets
		# List the color themes as JSON
		%[1]s list themes -o json
		# List the configured profiles
		%[1]s list profiles
		`, meta.CLIName)))
)

// NewListCmd creates the list command and its sub-commands.
func NewListCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     listUse,
		Short:   listShort,
		Long:    listLong,
		Example: listExamples,
		Aliases: []string{"ls", "l"},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
	}

	cmd.AddCommand(newDatasetsCmd(), newThemesCmd(), newProfilesCmd())
	return cmd, nil
}

// printList writes raw through the structured printers, or records as a
// static table for text output.
func printList(helper cmdpkg.Helper, title string, raw any,
	records []datatable.Record, columns []datatable.Column,
) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	streams := helper.GetStreams()
	if streams == nil {
		return fmt.Errorf("output streams unavailable")
	}

	if outType != cmdcommon.TEXT {
		return printValue(outType, streams.Out, raw)
	}
	return tableview.Render(streams, records, columns,
		tableview.WithTitle(title),
		tableview.WithPalette(theme.FromContext(helper.GetContext())),
		tableview.WithInteractive(false),
		tableview.WithTableOptions(datatable.WithPagination(false)),
	)
}

func printValue(outType cmdcommon.OutputFormat, out io.Writer, v any) error {
	printer, err := cli.Format(outType.String(), out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(v)
	return nil
}
