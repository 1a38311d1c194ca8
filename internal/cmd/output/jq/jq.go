package jq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/itchyny/gojq"
	cmdpkg "github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	FlagName               = "jq"
	ColorFlagName          = "jq-color"
	ColorThemeFlagName     = "jq-color-theme"
	RawOutputFlagName      = "jq-raw-output"
	RawOutputFlagShort     = "r"
	ColorEnabledConfigPath = "jq.color.enabled"
	ColorThemeConfigPath   = "jq.color.theme"
	RawOutputConfigPath    = "jq.raw-output"
	DefaultTheme           = "friendly"
)

var compiled sync.Map

// Settings is the resolved jq behaviour of one command invocation.
type Settings struct {
	Filter    string
	ColorMode cmdcommon.ColorMode
	Theme     string
	RawOutput bool
}

// Enabled reports whether a filter was requested.
func (s Settings) Enabled() bool {
	return strings.TrimSpace(s.Filter) != ""
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(FlagName, "",
		"Transform exported records with a jq expression (gojq dialect).")

	jqColor := cmdpkg.NewEnum([]string{
		cmdcommon.ColorModeAuto.String(),
		cmdcommon.ColorModeAlways.String(),
		cmdcommon.ColorModeNever.String(),
	}, cmdcommon.DefaultColorMode)
	flags.Var(jqColor, ColorFlagName,
		fmt.Sprintf(`Colorize jq results written as JSON.
- Config path: [ %s ]
- Allowed    : [ auto|always|never ]`, ColorEnabledConfigPath))

	flags.String(ColorThemeFlagName, DefaultTheme,
		fmt.Sprintf(`Chroma style used to colorize jq results.
- Config path: [ %s ]
- Examples   : [ friendly, github-dark, dracula ]`, ColorThemeConfigPath))

	flags.BoolP(RawOutputFlagName, RawOutputFlagShort, false,
		fmt.Sprintf(`Print string results without JSON quotes, one per line.
- Config path: [ %s ]`, RawOutputConfigPath))
}

// BindFlags ties the jq flags to their config paths so flag > env > file
// precedence applies.
func BindFlags(cfg config.Hook, flags *pflag.FlagSet) error {
	if cfg == nil || flags == nil {
		return nil
	}
	for flag, path := range map[string]string{
		ColorFlagName:      ColorEnabledConfigPath,
		ColorThemeFlagName: ColorThemeConfigPath,
		RawOutputFlagName:  RawOutputConfigPath,
	} {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := cfg.BindFlag(path, f); err != nil {
			return err
		}
	}
	return nil
}

// ResolveSettings reads the jq flags of command, with config supplying color
// and raw output defaults. Commands without a --jq flag never filter.
func ResolveSettings(command *cobra.Command, cfg config.Hook) (Settings, error) {
	settings := Settings{Theme: DefaultTheme, ColorMode: cmdcommon.ColorModeAuto}
	if command == nil || command.Flags().Lookup(FlagName) == nil {
		return settings, nil
	}
	flags := command.Flags()

	filter, err := flags.GetString(FlagName)
	if err != nil {
		return Settings{}, err
	}
	filter = strings.TrimSpace(filter)
	if filter == "" && flags.Changed(FlagName) {
		filter = "."
	}
	settings.Filter = filter

	if cfg == nil {
		if flags.Lookup(RawOutputFlagName) != nil {
			settings.RawOutput, err = flags.GetBool(RawOutputFlagName)
		}
		return settings, err
	}

	mode, err := cmdcommon.ColorModeStringToIota(
		strings.ToLower(strings.TrimSpace(cfg.GetString(ColorEnabledConfigPath))))
	if err != nil {
		return Settings{}, err
	}
	settings.ColorMode = mode
	if theme := strings.TrimSpace(cfg.GetString(ColorThemeConfigPath)); theme != "" {
		settings.Theme = theme
	}
	settings.RawOutput = cfg.GetBool(RawOutputConfigPath)
	return settings, nil
}

// ValidateOutputFormat rejects combinations the printers cannot honour.
func ValidateOutputFormat(outType cmdcommon.OutputFormat, settings Settings) error {
	switch {
	case settings.RawOutput && !settings.Enabled():
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s requires --%s", RawOutputFlagName, FlagName),
		}
	case settings.RawOutput && outType != cmdcommon.JSON:
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json", RawOutputFlagName),
		}
	case settings.Enabled() && outType == cmdcommon.TEXT:
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json or --output yaml", FlagName),
		}
	}
	return nil
}

// Apply runs the configured filter over value. When the result has already
// been written to out (raw or colorized output) handled is true; otherwise
// the returned payload should be handed to the regular printer.
func Apply(value any, outType cmdcommon.OutputFormat, settings Settings, out io.Writer) (any, bool, error) {
	if !settings.Enabled() {
		return value, false, nil
	}
	if err := ValidateOutputFormat(outType, settings); err != nil {
		return nil, false, err
	}

	results, err := Run(value, settings.Filter)
	if err != nil {
		return nil, false, err
	}

	if settings.RawOutput {
		return nil, true, writeRaw(results, out)
	}

	payload := collapse(results)
	if outType == cmdcommon.JSON && ShouldUseColor(settings.ColorMode, out) {
		formatted, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, false, err
		}
		_, err = fmt.Fprintln(out, Colorize(payload, string(formatted), settings.Theme))
		return nil, true, err
	}
	return payload, false, nil
}

// Run evaluates filter against value and returns every emitted result.
// value is normalized through JSON first so named map and slice types (such
// as table records) are visible to jq.
func Run(value any, filter string) ([]any, error) {
	code, err := compile(filter)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding input for jq: %w", err)
	}
	var input any
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, fmt.Errorf("decoding input for jq: %w", err)
	}

	var results []any
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func compile(filter string) (*gojq.Code, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		filter = "."
	}
	if code, ok := compiled.Load(filter); ok {
		return code.(*gojq.Code), nil
	}

	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	compiled.Store(filter, code)
	return code, nil
}

// collapse mirrors jq's stream output for a single printer call: no result
// is null, one result is itself, several become an array.
func collapse(results []any) any {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		return results
	}
}

func writeRaw(results []any, out io.Writer) error {
	for _, result := range results {
		line, ok := result.(string)
		if !ok {
			encoded, err := json.Marshal(result)
			if err != nil {
				return fmt.Errorf("failed to encode jq result: %w", err)
			}
			line = string(encoded)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func ShouldUseColor(mode cmdcommon.ColorMode, out io.Writer) bool {
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	default:
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			return false
		}
		return iostreams.IsTerminal(out)
	}
}

// Colorize highlights formatted JSON with a chroma style. Scalars and any
// highlighting failure return formatted unchanged.
func Colorize(payload any, formatted, theme string) string {
	switch payload.(type) {
	case map[string]any, []any:
	default:
		return formatted
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		return formatted
	}
	iterator, err := lexer.Tokenise(nil, formatted)
	if err != nil {
		return formatted
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return formatted
	}
	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return formatted
	}
	return strings.TrimRight(buf.String(), "\n")
}
