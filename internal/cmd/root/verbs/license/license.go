package license

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	cmdpkg "github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/cmd/output/tableview"
	"github.com/kong/dashctl/internal/cmd/root/verbs"
	"github.com/kong/dashctl/internal/datatable"
	licensepkg "github.com/kong/dashctl/internal/license"
	"github.com/kong/dashctl/internal/meta"
	"github.com/kong/dashctl/internal/theme"
	"github.com/kong/dashctl/internal/util/i18n"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	Verb = verbs.License
)

var (
	licenseUse = Verb.String()

	licenseShort = i18n.T("root.verbs.license.licenseShort", "Inspect and activate the license")

	licenseLong = normalizers.LongDesc(i18n.T("root.verbs.license.licenseLong",
		`Show the active license tier and its features, activate a paid tier with
a license key, or check whether a feature is available.

The license is stored in the active profile of the configuration file.`))

	licenseExamples = normalizers.Examples(i18n.T("root.verbs.license.licenseExamples",
		fmt.Sprintf(`
		# Show the active license
		%[1]s license show

		# Activate the pro tier
		%[1]s license activate pro PRO-XXXX-XXXX

		# Check whether exports are allowed
		%[1]s license check export-data
		`, meta.CLIName)))
)

// now is replaced in tests.
var now = time.Now

// NewLicenseCmd creates the license command and its sub-commands.
func NewLicenseCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     licenseUse,
		Short:   licenseShort,
		Long:    licenseLong,
		Example: licenseExamples,
		Aliases: []string{"lic"},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
	}

	cmd.AddCommand(newShowCmd(), newActivateCmd(), newCheckCmd())
	return cmd, nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   verbs.Show.String(),
		Short: i18n.T("root.verbs.license.showShort", "Show the active license and its features"),
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runShow(cmdpkg.BuildHelper(c, args))
		},
	}
}

func newActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   verbs.Activate.String() + " <tier> <key>",
		Short: i18n.T("root.verbs.license.activateShort", "Activate a license tier with its key"),
		Long: normalizers.LongDesc(i18n.T("root.verbs.license.activateLong",
			fmt.Sprintf(`Activate one of the tiers %v. Paid tiers need a key and stay valid
for one year. Activating the free tier removes any stored key.`, licensepkg.Tiers))),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			return runActivate(cmdpkg.BuildHelper(c, args))
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   verbs.Check.String() + " <feature>",
		Short: i18n.T("root.verbs.license.checkShort", "Report whether a feature is available"),
		Long: normalizers.LongDesc(i18n.T("root.verbs.license.checkLong",
			fmt.Sprintf(`Report whether the active license includes a feature. The feature is
either an entry of the tier table (%v) or a gated capability such as
%q.`, licensepkg.FeatureNames, licensepkg.ExportFeature))),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runCheck(cmdpkg.BuildHelper(c, args))
		},
	}
}

// current loads the stored license. Unreadable or expired licenses fall
// back to the free tier with a warning.
func current(helper cmdpkg.Helper) (licensepkg.License, error) {
	cfg, err := helper.GetConfig()
	if err != nil {
		return licensepkg.License{}, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return licensepkg.License{}, err
	}

	lic, err := licensepkg.Load(cfg, now())
	if err != nil {
		logger.Warn("using the free tier", "error", err)
	}
	return lic, nil
}

func runShow(helper cmdpkg.Helper) error {
	lic, err := current(helper)
	if err != nil {
		return err
	}
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}

	streams := helper.GetStreams()
	if outType != cmdcommon.TEXT {
		return printValue(outType, streams.Out, lic)
	}

	if err := writeSummary(streams.Out, lic); err != nil {
		return err
	}
	return tableview.Render(streams, featureRecords(lic.Features), featureColumns,
		tableview.WithTitle("Features"),
		tableview.WithPalette(theme.FromContext(helper.GetContext())),
		tableview.WithInteractive(false),
		tableview.WithTableOptions(datatable.WithPagination(false)),
	)
}

func writeSummary(out io.Writer, lic licensepkg.License) error {
	status := "valid"
	if !lic.Valid {
		status = "invalid"
	}
	expires := "never"
	if !lic.Expires.IsZero() {
		expires = lic.Expires.Format(time.DateOnly)
	}
	_, err := fmt.Fprintf(out, "Tier:    %s\nStatus:  %s\nExpires: %s\n\n", lic.Tier, status, expires)
	return err
}

var featureColumns = []datatable.Column{
	{Key: "feature", Label: "Feature", Sortable: true},
	{Key: "value", Label: "Value"},
	{Key: "available", Label: "Available"},
}

func featureRecords(f licensepkg.Features) []datatable.Record {
	values := map[string]any{
		"dashboards":     f.Dashboards.String(),
		"components":     f.Components.String(),
		"users":          f.Users.String(),
		"support":        f.Support,
		"analytics":      f.Analytics,
		"customBranding": f.CustomBranding,
		"apiAccess":      f.APIAccess,
		"exportData":     f.ExportData,
		"multiTenant":    f.MultiTenant,
		"sourceCode":     f.SourceCode,
	}
	out := make([]datatable.Record, 0, len(licensepkg.FeatureNames))
	for _, name := range licensepkg.FeatureNames {
		available, _ := f.Check(name)
		out = append(out, datatable.Record{
			"feature":   name,
			"value":     values[name],
			"available": yesNo(available),
		})
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func runActivate(helper cmdpkg.Helper) error {
	args := helper.GetArgs()
	tier, err := licensepkg.ParseTier(args[0])
	if err != nil {
		return &cmdpkg.ConfigurationError{Err: err}
	}
	var key string
	if len(args) > 1 {
		key = args[1]
	}

	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}

	lic, err := licensepkg.Activate(cfg, tier, key, now())
	if err != nil {
		if errors.Is(err, licensepkg.ErrInvalidKey) {
			return cmdpkg.PrepareExecutionErrorWithHelper(helper, "license activation failed", err,
				"tier", string(tier))
		}
		return cmdpkg.PrepareExecutionErrorWithHelper(helper, "unable to store license", err,
			"config", cfg.GetPath())
	}
	logger.Info("license activated", "tier", string(lic.Tier), "profile", cfg.GetProfile())

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	if outType != cmdcommon.TEXT {
		return printValue(outType, helper.GetStreams().Out, lic)
	}
	return writeSummary(helper.GetStreams().Out, lic)
}

type checkResult struct {
	Feature   string          `json:"feature"   yaml:"feature"`
	Tier      licensepkg.Tier `json:"tier"      yaml:"tier"`
	Available bool            `json:"available" yaml:"available"`
}

func runCheck(helper cmdpkg.Helper) error {
	name := helper.GetArgs()[0]
	lic, err := current(helper)
	if err != nil {
		return err
	}

	var available bool
	if slices.Contains(licensepkg.FeatureNames, name) {
		available, err = lic.CheckFeature(name)
		if err != nil {
			return &cmdpkg.ConfigurationError{Err: err}
		}
	} else {
		available = lic.HasAccess(name)
	}

	result := checkResult{Feature: name, Tier: lic.Tier, Available: available}
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	if outType != cmdcommon.TEXT {
		return printValue(outType, helper.GetStreams().Out, result)
	}

	state := "available"
	if !available {
		state = "not available"
	}
	_, err = fmt.Fprintf(helper.GetStreams().Out, "%s is %s on the %s tier\n", name, state, lic.Tier)
	return err
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
