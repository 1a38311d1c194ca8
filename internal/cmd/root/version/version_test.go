package version

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kong/dashctl/internal/build"
	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/kong/dashctl/test/cmd"
	testConfig "github.com/kong/dashctl/test/config"
	"github.com/stretchr/testify/require"
)

func newHelper(format common.OutputFormat, showCommit bool) (*cmd.MockHelper, *bytes.Buffer) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	cfg := testConfig.NewMockConfigHook(map[string]any{ShowCommitConfigPath: showCommit})

	return &cmd.MockHelper{
		GetOutputFormatMock: func() (common.OutputFormat, error) { return format, nil },
		GetConfigMock:       func() (config.Hook, error) { return cfg, nil },
		GetStreamsMock:      func() *iostreams.IOStreams { return &all },
		GetBuildInfoMock: func() (*build.Info, error) {
			return &build.Info{Version: "1.2.0", Commit: "abc1234", Date: "2026-10-01"}, nil
		},
	}, out
}

func Test_VersionCmd(t *testing.T) {
	cases := []struct {
		name       string
		showCommit bool
		want       string
	}{
		{name: "version only", want: "1.2.0\n"},
		{name: "with commit", showCommit: true, want: "1.2.0 (abc1234, built 2026-10-01)\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			helper, out := newHelper(common.TEXT, tc.showCommit)
			require.NoError(t, run(helper))
			require.Equal(t, tc.want, out.String())
		})
	}
}

func Test_VersionCmdJSONOutput(t *testing.T) {
	helper, out := newHelper(common.JSON, true)
	require.NoError(t, run(helper))

	var got versionOutput
	require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
	require.Equal(t, versionOutput{Version: "1.2.0", Commit: "abc1234", Date: "2026-10-01"}, got)
}

func Test_VersionCmdRequiresBuildInfo(t *testing.T) {
	helper, _ := newHelper(common.TEXT, false)
	helper.GetBuildInfoMock = func() (*build.Info, error) {
		return nil, errors.New("no build info configured")
	}
	require.EqualError(t, run(helper), "no build info configured")
}
