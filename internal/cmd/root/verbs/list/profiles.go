package list

import (
	"fmt"

	"github.com/kong/dashctl/internal/cmd"
	cmdcommon "github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/datatable"
	"github.com/kong/dashctl/internal/profile"
	"github.com/kong/dashctl/internal/util/i18n"
	"github.com/kong/dashctl/internal/util/normalizers"
	"github.com/spf13/cobra"
)

var (
	profilesShort = i18n.T("root.verbs.list.profilesShort", "List the configuration profiles")
	profilesLong  = normalizers.LongDesc(i18n.T("root.verbs.list.profilesLong",
		`List the profiles stored in the configuration file. The active profile is
selected with --profile or the DASHCTL_PROFILE environment variable.`))
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "profiles",
		Short:   profilesShort,
		Long:    profilesLong,
		Aliases: []string{"profile"},
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runListProfiles(cmd.BuildHelper(c, args))
		},
	}
}

type profileOutput struct {
	Name     string `json:"name"               yaml:"name"`
	Active   bool   `json:"active"             yaml:"active"`
	PageSize int    `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	Theme    string `json:"theme,omitempty"    yaml:"theme,omitempty"`
	License  string `json:"license,omitempty"  yaml:"license,omitempty"`
}

var profileColumns = []datatable.Column{
	{Key: "name", Label: "Name", Sortable: true},
	{Key: "active", Label: "Active"},
	{Key: "theme", Label: "Theme"},
	{Key: "pageSize", Label: "Page Size"},
	{Key: "license", Label: "License"},
}

func runListProfiles(helper cmd.Helper) error {
	manager, ok := helper.GetContext().Value(profile.ProfileManagerKey).(profile.Manager)
	if !ok || manager == nil {
		return &cmd.ConfigurationError{Err: fmt.Errorf("no profile manager configured")}
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	names := manager.GetProfiles()
	out := make([]profileOutput, 0, len(names))
	records := make([]datatable.Record, 0, len(names))
	for _, name := range names {
		p := describeProfile(name, manager.GetProfile(name))
		p.Active = name == cfg.GetProfile()
		out = append(out, p)
		records = append(records, datatable.Record{
			"name":     p.Name,
			"active":   p.Active,
			"theme":    p.Theme,
			"pageSize": p.PageSize,
			"license":  p.License,
		})
	}
	return printList(helper, "Profiles", out, records, profileColumns)
}

func describeProfile(name string, settings map[string]any) profileOutput {
	p := profileOutput{Name: name}
	if v, ok := settings[cmdcommon.ColorThemeConfigPath].(string); ok {
		p.Theme = v
	}
	if table, ok := settings["table"].(map[string]any); ok {
		switch size := table["page-size"].(type) {
		case int:
			p.PageSize = size
		case float64:
			p.PageSize = int(size)
		}
	}
	if lic, ok := settings["license"].(map[string]any); ok {
		if tier, ok := lic["type"].(string); ok {
			p.License = tier
		}
	}
	return p
}
