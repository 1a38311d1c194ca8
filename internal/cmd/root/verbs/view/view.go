package view

import (
	"context"
	"fmt"

	cmdpkg "github.com/kong/dashctl/internal/cmd"
	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/cmd/output/tableview"
	"github.com/kong/dashctl/internal/cmd/root/verbs"
	"github.com/kong/dashctl/internal/cmd/root/verbs/tablecmd"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/meta"
	"github.com/kong/dashctl/internal/theme"
	"github.com/kong/dashctl/internal/util/i18n"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.View
)

var (
	viewUse = Verb.String() + " <dataset|file>"

	viewShort = i18n.T("root.verbs.view.viewShort", "Browse a dataset as a table")

	viewLong = normalizers.LongDesc(i18n.T("root.verbs.view.viewLong",
		`Show a dataset page by page with global search, column sorting and row
actions.

The dataset is either a built-in name, a path to a JSON, YAML or CSV file, or
the base name of a file in the configured dataset directory. On a terminal the
interactive viewer opens; otherwise the requested page is printed.`))

	viewExamples = normalizers.Examples(i18n.T("root.verbs.view.viewExamples",
		fmt.Sprintf(`
		# Browse the built-in users dataset
		%[1]s view users

		# Print page 2 of the payments sorted by amount, highest first
		%[1]s view payments --sort amount:desc --page 2 --interactive=false

		# Search a CSV file and show two columns
		%[1]s view ./orders.csv --search pending --columns id,status
		`, meta.CLIName)))
)

// NewViewCmd creates the view command.
func NewViewCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     viewUse,
		Short:   viewShort,
		Long:    viewLong,
		Example: viewExamples,
		Aliases: []string{"v", "show"},
		Args:    verbs.ExactDatasetArg,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
		PreRunE: func(c *cobra.Command, args []string) error {
			return tablecmd.BindFlags(cmdpkg.BuildHelper(c, args))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args))
		},
	}

	tablecmd.AddFlags(cmd.Flags(), true)
	cmd.Flags().BoolP(common.InteractiveFlagName, common.InteractiveFlagShort, true,
		"Open the interactive viewer. Defaults to true on a terminal.")

	return cmd, nil
}

func run(helper cmdpkg.Helper) error {
	settings, err := tablecmd.ReadSettings(helper)
	if err != nil {
		return err
	}
	ds, err := tablecmd.Load(helper, helper.GetArgs()[0], &settings)
	if err != nil {
		return err
	}
	interactive, err := helper.IsInteractive()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	logger.Debug("viewing dataset", "dataset", ds.Name, "source", ds.Source,
		"records", len(ds.Records), "interactive", interactive)

	err = tableview.Render(helper.GetStreams(), ds.Records, ds.Columns,
		tableview.WithTitle(ds.Title),
		tableview.WithPalette(theme.FromContext(helper.GetContext())),
		tableview.WithFooter(ds.Description),
		tableview.WithProfileName(cfg.GetProfile()),
		tableview.WithInteractive(interactive),
		tableview.WithTableOptions(settings.TableOptions(logger)...),
		tableview.WithInitialState(settings.Search, settings.Sort, settings.Page),
		tableview.WithEditHandler(func(rec datatable.Record, key string, value any) error {
			logger.Info("record edited", "dataset", ds.Name, "field", key)
			rec[key] = value
			return nil
		}),
		tableview.WithDeleteHandler(func(rec datatable.Record) ([]datatable.Record, error) {
			if !ds.Remove(rec) {
				return nil, fmt.Errorf("record is no longer part of dataset %q", ds.Name)
			}
			logger.Info("record deleted", "dataset", ds.Name, "remaining", len(ds.Records))
			return ds.Records, nil
		}),
	)
	if err != nil {
		return cmdpkg.PrepareExecutionErrorWithHelper(helper, "unable to render table", err, "dataset", ds.Name)
	}
	return nil
}
