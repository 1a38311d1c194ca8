package list

import (
	"github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/dataset"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "datasets",
		Short:   "List the datasets available to view and export",
		Aliases: []string{"dataset", "ds"},
		Long: normalizers.LongDesc(`List the built-in datasets followed by the data files found
in the configured dataset directory. Files that cannot be read are skipped
with a warning.`),
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runListDatasets(cmd.BuildHelper(c, args))
		},
	}
}

var datasetColumns = []datatable.Column{
	{Key: "name", Label: "Name", Sortable: true},
	{Key: "title", Label: "Title", Sortable: true},
	{Key: "records", Label: "Records"},
	{Key: "columns", Label: "Columns"},
	{Key: "source", Label: "Source"},
}

func runListDatasets(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}

	var infos []dataset.Info
	for _, name := range dataset.Names() {
		ds, err := dataset.Builtin(name)
		if err != nil {
			logger.Warn("skipping built-in dataset", "dataset", name, "error", err)
			continue
		}
		infos = append(infos, ds.Info())
	}

	dir := cfg.GetString(cmdcommon.DatasetDirConfigPath)
	found, errs := dataset.Discover(dir)
	for _, err := range errs {
		logger.Warn("skipping unreadable dataset file", "dir", dir, "error", err)
	}
	for _, ds := range found {
		infos = append(infos, ds.Info())
	}

	records := make([]datatable.Record, len(infos))
	for i, info := range infos {
		records[i] = datatable.Record{
			"name":    info.Name,
			"title":   info.Title,
			"records": info.Records,
			"columns": info.Columns,
			"source":  info.Source,
		}
	}
	return printList(helper, "Datasets", infos, records, datasetColumns)
}
