package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/kong/dashctl/internal/build"
	"github.com/kong/dashctl/internal/cmd"
	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/cmd/root/verbs/export"
	"github.com/kong/dashctl/internal/cmd/root/verbs/license"
	"github.com/kong/dashctl/internal/cmd/root/verbs/list"
	"github.com/kong/dashctl/internal/cmd/root/verbs/view"
	"github.com/kong/dashctl/internal/cmd/root/version"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/kong/dashctl/internal/log"
	"github.com/kong/dashctl/internal/meta"
	"github.com/kong/dashctl/internal/profile"
	"github.com/kong/dashctl/internal/theme"
	"github.com/kong/dashctl/internal/util"
	"github.com/kong/dashctl/internal/util/i18n"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", fmt.Sprintf(`
  %s browses tabular data sets from the terminal.

  Datasets can be viewed page by page with search, sorting and row actions,
  exported as JSON or YAML, and described with column definition files.`, meta.CLIName)))

	rootShort = i18n.T("root/rootShort", fmt.Sprintf("%s views and exports tabular data", meta.CLIName))

	rootCmd *cobra.Command

	// Stores the global runtime value for the Configuration file path
	defaultConfigFilePath, _ = config.GetDefaultConfigFilePath()
	configFilePath           = defaultConfigFilePath
	currProfile              = profile.DefaultProfile

	currConfig *config.ProfiledConfig
	streams    *iostreams.IOStreams
	pMgr       profile.Manager
	logger     *slog.Logger
	logCloser  io.Closer

	outputFormat = cmd.NewEnum([]string{"json", "yaml", "text"}, common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel)
	colorMode    = cmd.NewEnum([]string{"auto", "always", "never"}, common.DefaultColorMode)
	colorTheme   = theme.NewFlag(common.DefaultColorTheme)

	buildInfo *build.Info
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   meta.CLIName,
		Short: rootShort,
		Long:  rootLong,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			l, closer, err := log.New(log.Settings{
				Level: currConfig.GetString(common.LogLevelConfigPath),
				File:  currConfig.GetString(common.LogFileConfigPath),
			}, streams.ErrOut)
			if err != nil {
				return &cmd.ConfigurationError{Err: err}
			}
			logger, logCloser = l, closer

			if err := theme.SetCurrent(currConfig.GetString(common.ColorThemeConfigPath)); err != nil {
				logger.Warn("falling back to the default color theme", "error", err)
			}

			logger.Debug("running command", "command", c.CommandPath(),
				"profile", currConfig.GetProfile(), "config", currConfig.GetPath())

			ctx := context.WithValue(c.Context(), config.ConfigKey, config.Hook(currConfig))
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, profile.ProfileManagerKey, pMgr)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			ctx = theme.ContextWithPalette(ctx, theme.Current())
			c.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return closeLog()
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFilePath, common.ConfigFilePathFlagName, defaultConfigFilePath,
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	flags.StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort,
		profile.DefaultProfile,
		fmt.Sprintf("Specify the profile to use for this command.\n- Environment: [ %s_PROFILE ]",
			meta.EnvPrefix))

	flags.VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(outputFormat.Allowed, "|")))

	flags.Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level written to the log file.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(logLevel.Allowed, "|")))

	flags.String(common.LogFileFlagName, "",
		fmt.Sprintf(`Write log records to this file.
- Config path: [ %s ]`, common.LogFileConfigPath))

	flags.Var(colorMode, common.ColorFlagName,
		fmt.Sprintf(`Controls colored output.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.ColorConfigPath, strings.Join(colorMode.Allowed, "|")))

	flags.Var(colorTheme, common.ColorThemeFlagName,
		fmt.Sprintf(`Color theme of the table viewer. See '%s list themes'.
- Config path: [ %s ]`, meta.CLIName, common.ColorThemeConfigPath))

	flags.String(common.DatasetDirFlagName, "",
		fmt.Sprintf(`Directory searched for dataset files by base name.
- Config path: [ %s ]`, common.DatasetDirConfigPath))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() error {
	rootCmd.AddCommand(version.NewVersionCmd())

	for _, newCmd := range []func() (*cobra.Command, error){
		list.NewListCmd,
		view.NewViewCmd,
		export.NewExportCmd,
		license.NewLicenseCmd,
	} {
		c, e := newCmd()
		if e != nil {
			return e
		}
		rootCmd.AddCommand(c)
	}
	return nil
}

// flagBindings ties persistent flags to their configuration paths.
var flagBindings = map[string]string{
	common.OutputFlagName:     common.OutputConfigPath,
	common.LogLevelFlagName:   common.LogLevelConfigPath,
	common.LogFileFlagName:    common.LogFileConfigPath,
	common.ColorFlagName:      common.ColorConfigPath,
	common.ColorThemeFlagName: common.ColorThemeConfigPath,
	common.DatasetDirFlagName: common.DatasetDirConfigPath,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	err := addCommands()
	util.CheckError(err)

	// Because the profile is not part of the configuration, we can't use viper
	// to read it following its built in priorities. So here we look for a well known
	// profile variable and set our package level variable if it's set before
	// continuing to process the command run. This creates a ENV_VAR < CLI_FLAG priority
	profileEnvVar, found := os.LookupEnv(meta.EnvPrefix + "_PROFILE")
	if found && profileEnvVar != "" {
		currProfile = profileEnvVar
	}
}

func initConfig() {
	cfg, e1 := config.GetConfig(configFilePath, currProfile, defaultConfigFilePath)
	util.CheckError(e1)
	currConfig = cfg

	pMgr = profile.NewManager(cfg.Viper)

	for flagName, configPath := range flagBindings {
		f := rootCmd.PersistentFlags().Lookup(flagName)
		util.CheckError(cfg.BindFlag(configPath, f))
	}
}

func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

// Execute runs the root command and exits with status 1 on failure.
func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	format := outputFormat.String()
	if currConfig != nil {
		format = currConfig.GetString(common.OutputConfigPath)
	}
	reportError(err, format, s.ErrOut, logger)
	_ = closeLog()
	os.Exit(1)
}

// reportError renders execution errors: structured output formats get an
// error document, text output goes through the logger's console mirror.
// Other errors were already printed by cobra.
func reportError(err error, format string, out io.Writer, l *slog.Logger) {
	var executionError *cmd.ExecutionError
	if !errors.As(err, &executionError) {
		return
	}

	// causes carrying a JSON object contribute its fields as attributes
	attrs := append(slices.Clone(executionError.Attrs), cmd.TryConvertErrorToAttrs(executionError.Err)...)

	if format == "json" || format == "yaml" {
		doc := map[string]any{
			"error":   executionError.Msg,
			"details": executionError.Err.Error(),
		}
		for i := 0; i+1 < len(attrs); i += 2 {
			if key, ok := attrs[i].(string); ok {
				doc[key] = fmt.Sprint(attrs[i+1])
			}
		}
		if printer, perr := cli.Format(format, out); perr == nil {
			defer printer.Flush()
			printer.Print(doc)
			return
		}
	}

	if l == nil {
		l = slog.New(log.NewFriendlyErrorHandler(out))
	}
	args := append([]any{"reason", executionError.Err.Error()}, attrs...)
	l.Error(executionError.Msg, args...)
}
