package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	cmdpkg "github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/cmd/output/jq"
	"github.com/kong/dashctl/internal/cmd/output/tableview"
	"github.com/kong/dashctl/internal/cmd/root/verbs"
	"github.com/kong/dashctl/internal/cmd/root/verbs/tablecmd"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/license"
	"github.com/kong/dashctl/internal/meta"
	"github.com/kong/dashctl/internal/theme"
	"github.com/kong/dashctl/internal/util/i18n"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.Export

	AllFlagName = "all"
)

var (
	exportUse = Verb.String() + " <dataset|file>"

	exportShort = i18n.T("root.verbs.export.exportShort",
		"Export the records of a dataset")

	exportLong = normalizers.LongDesc(i18n.T("root.verbs.export.exportLong",
		`Export the records of a dataset after applying search, sort and column
selection.

Only the selected columns are written, in display order. By default the same
page a viewer would show is exported; pass --all to export every matching
record. Exporting requires a license that includes data export.`))

	exportExamples = normalizers.Examples(i18n.T("root.verbs.export.exportExamples",
		fmt.Sprintf(`
		# Export every pending order as JSON
		%[1]s export payments --search pending --all -o json

		# Export the first page of users sorted by name as YAML
		%[1]s export users --sort name -o yaml

		# Pull only the user names with jq
		%[1]s export users --all -o json --jq '[.[].name]'
		`, meta.CLIName)))
)

// NewExportCmd creates the export command.
func NewExportCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     exportUse,
		Short:   exportShort,
		Long:    exportLong,
		Example: exportExamples,
		Args:    verbs.ExactDatasetArg,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
		PreRunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			if err := tablecmd.BindFlags(helper); err != nil {
				return err
			}
			cfg, err := helper.GetConfig()
			if err != nil {
				return err
			}
			return jq.BindFlags(cfg, c.Flags())
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args), time.Now())
		},
	}

	tablecmd.AddFlags(cmd.Flags(), true)
	cmd.Flags().Bool(AllFlagName, false, "Export every matching record instead of a single page.")
	jq.AddFlags(cmd.Flags())

	return cmd, nil
}

func run(helper cmdpkg.Helper, now time.Time) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}

	if err := requireExport(helper, now); err != nil {
		return err
	}

	settings, err := tablecmd.ReadSettings(helper)
	if err != nil {
		return err
	}
	all, err := helper.GetCmd().Flags().GetBool(AllFlagName)
	if err != nil {
		return err
	}
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	jqSettings, err := jq.ResolveSettings(helper.GetCmd(), cfg)
	if err != nil {
		return err
	}
	if err := jq.ValidateOutputFormat(outType, jqSettings); err != nil {
		return err
	}

	ds, err := tablecmd.Load(helper, helper.GetArgs()[0], &settings)
	if err != nil {
		return err
	}

	rows := settings.Rows(ds, !all, logger)
	logger.Debug("exporting dataset", "dataset", ds.Name, "records", len(rows), "all", all)

	streams := helper.GetStreams()
	if outType == cmdcommon.TEXT {
		return tableview.Render(streams, rows, ds.Columns,
			tableview.WithTitle(ds.Title),
			tableview.WithPalette(theme.FromContext(helper.GetContext())),
			tableview.WithInteractive(false),
			tableview.WithInitialState("", settings.Sort, 1),
			tableview.WithTableOptions(datatable.WithPagination(false)),
		)
	}

	payload, handled, err := jq.Apply(Project(rows, ds.Columns), outType, jqSettings, streams.Out)
	if err != nil {
		return cmdpkg.PrepareExecutionErrorWithHelper(helper, "jq filter failed", err, "dataset", ds.Name)
	}
	if handled {
		return nil
	}

	printer, err := cli.Format(outType.String(), streams.Out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(payload)
	return nil
}

func requireExport(helper cmdpkg.Helper, now time.Time) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}

	lic, err := license.Load(cfg, now)
	switch {
	case errors.Is(err, license.ErrExpired):
		logger.Warn("license expired, continuing on the free tier", "error", err)
	case err != nil:
		logger.Warn("ignoring stored license", "error", err)
	}

	if err := lic.Require(license.ExportFeature); err != nil {
		return cmdpkg.PrepareExecutionErrorWithHelper(helper, "export is not included in your license", err,
			"tier", string(lic.Tier),
			"suggestion", fmt.Sprintf("run '%s license activate pro <key>' to unlock exports", meta.CLIName))
	}
	return nil
}

// Project keeps only the column fields of each record. Fields are emitted by
// key so the printers order them consistently.
func Project(rows []datatable.Record, columns []datatable.Column) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, rec := range rows {
		m := make(map[string]any, len(columns))
		for _, col := range columns {
			v, _ := rec.Value(col.Key)
			m[col.Key] = v
		}
		out[i] = m
	}
	return out
}
