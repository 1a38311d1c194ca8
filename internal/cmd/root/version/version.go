package version

import (
	"fmt"
	"io"

	"github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/meta"
	"github.com/kong/dashctl/internal/util"
	"github.com/kong/dashctl/internal/util/i18n"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	ShowCommitFlagName   = "show-commit"
	ShowCommitConfigPath = "version." + ShowCommitFlagName
)

var (
	versionUse   = "version"
	versionShort = i18n.T("root.version.versionShort",
		fmt.Sprintf("Print the %s version", meta.CLIName))
	versionLong = normalizers.LongDesc(i18n.T("root.version.versionLong",
		`The version command prints the version and other optional information`))
	versionExample = normalizers.Examples(i18n.T("root.version.versionExamples",
		fmt.Sprintf(`
		# Print the simple version
		%[1]s version
		# Print the version, the git commit hash and the build date
		%[1]s version --show-commit
		`, meta.CLIName)))
)

// NewVersionCmd builds the version command.
func NewVersionCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     versionUse,
		Short:   versionShort,
		Long:    versionLong,
		Example: versionExample,
		Args:    cobra.NoArgs,
		PreRun: func(c *cobra.Command, args []string) {
			bindFlags(c, args)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args))
		},
	}

	rv.Flags().Bool(ShowCommitFlagName, false,
		i18n.T(fmt.Sprintf("root.%s", ShowCommitConfigPath),
			fmt.Sprintf("True to show the git commit hash and build date.\n (config path = '%s')",
				ShowCommitConfigPath)))

	return rv
}

func bindFlags(c *cobra.Command, args []string) {
	helper := cmd.BuildHelper(c, args)
	cfg, e := helper.GetConfig()
	util.CheckError(e)
	f := c.Flags().Lookup(ShowCommitFlagName)
	err := cfg.BindFlag(ShowCommitConfigPath, f)
	util.CheckError(err)
}

type versionOutput struct {
	Version string `json:"version"          yaml:"version"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Date    string `json:"date,omitempty"   yaml:"date,omitempty"`
}

func run(helper cmd.Helper) error {
	info, err := helper.GetBuildInfo()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	result := versionOutput{Version: info.Version}
	if cfg.GetBool(ShowCommitConfigPath) {
		result.Commit = info.Commit
		result.Date = info.Date
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	if outType == cmdcommon.TEXT {
		return printText(result, helper.GetStreams().Out)
	}

	p, err := cli.Format(outType.String(), helper.GetStreams().Out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(result)
	return nil
}

func printText(v versionOutput, out io.Writer) error {
	if _, err := fmt.Fprint(out, v.Version); err != nil {
		return err
	}
	if v.Commit != "" {
		if _, err := fmt.Fprintf(out, " (%s, built %s)", v.Commit, v.Date); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out)
	return err
}
