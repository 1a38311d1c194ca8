package list

import (
	"os"
	"strings"

	"github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/kong/dashctl/internal/theme"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available color themes",
		Long: normalizers.LongDesc(`Display all registered color themes and a small sample
of their palette. The active theme is marked with an asterisk.`),
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runListThemes(cmd.BuildHelper(c, args))
		},
	}
}

type themeOutput struct {
	ID      string      `json:"id"              yaml:"id"`
	Name    string      `json:"name"            yaml:"name"`
	Active  bool        `json:"active"          yaml:"active"`
	Primary theme.Color `json:"primary"         yaml:"primary"`
	Accent  theme.Color `json:"accent"          yaml:"accent"`
	About   string      `json:"about,omitempty" yaml:"about,omitempty"`
}

func runListThemes(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	active := activeThemeName(cfg)
	useColor := shouldRenderColor(cfg, helper.GetStreams())

	var (
		out      []themeOutput
		records  []datatable.Record
		palettes = map[string]theme.Palette{}
	)
	for _, id := range theme.Available() {
		pal, ok := theme.Get(id)
		if !ok {
			continue
		}
		palettes[pal.Name] = pal
		isActive := strings.ToLower(pal.Name) == active

		out = append(out, themeOutput{
			ID:      pal.Name,
			Name:    pal.DisplayName,
			Active:  isActive,
			Primary: pal.Color(theme.ColorPrimary),
			Accent:  pal.Color(theme.ColorAccent),
			About:   strings.TrimSpace(pal.About),
		})

		displayID := pal.Name
		if isActive {
			displayID = "*" + displayID
		}
		records = append(records, datatable.Record{
			"id":      displayID,
			"theme":   pal.Name,
			"name":    pal.DisplayName,
			"primary": pal.Color(theme.ColorPrimary).Light,
			"accent":  pal.Color(theme.ColorAccent).Light,
			"about":   strings.TrimSpace(pal.About),
		})
	}

	columns := []datatable.Column{
		{Key: "id", Label: "ID", Sortable: true},
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "primary", Label: "Primary", Render: swatch(palettes, theme.ColorPrimary, useColor)},
		{Key: "accent", Label: "Accent", Render: swatch(palettes, theme.ColorAccent, useColor)},
		{Key: "about", Label: "About"},
	}
	return printList(helper, "Available Themes", out, records, columns)
}

// swatch renders a block in the palette's color next to its hex value.
func swatch(palettes map[string]theme.Palette, token theme.Token, useColor bool) datatable.RenderFunc {
	return func(value any, rec datatable.Record) string {
		hex := datatable.Text(value)
		if !useColor {
			return hex
		}
		pal, ok := palettes[datatable.Text(rec["theme"])]
		if !ok {
			return hex
		}
		return pal.BackgroundStyle(token).Render("  ") + " " + hex
	}
}

func shouldRenderColor(cfg config.Hook, streams *iostreams.IOStreams) bool {
	if streams == nil {
		return false
	}
	mode, err := cmdcommon.ColorModeStringToIota(
		strings.ToLower(strings.TrimSpace(cfg.GetString(cmdcommon.ColorConfigPath))))
	if err != nil {
		mode = cmdcommon.ColorModeAuto
	}
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		return iostreams.IsTerminal(streams.Out)
	}
}

func activeThemeName(cfg config.Hook) string {
	name := strings.ToLower(strings.TrimSpace(cfg.GetString(cmdcommon.ColorThemeConfigPath)))
	if name == "" {
		name = cmdcommon.DefaultColorTheme
	}
	return name
}
