// Package cmd provides a cmd.Helper whose answers are supplied by the test.
package cmd

import (
	"context"
	"log/slog"

	"github.com/kong/dashctl/internal/build"
	"github.com/kong/dashctl/internal/cmd/common"
	"github.com/kong/dashctl/internal/config"
	"github.com/kong/dashctl/internal/iostreams"
	"github.com/spf13/cobra"
)

// MockHelper implements cmd.Helper. Unset mocks fall back to zero values,
// except GetCmd which yields an empty command.
type MockHelper struct {
	GetCmdMock          func() *cobra.Command
	GetArgsMock         func() []string
	GetStreamsMock      func() *iostreams.IOStreams
	GetConfigMock       func() (config.Hook, error)
	GetOutputFormatMock func() (common.OutputFormat, error)
	IsInteractiveMock   func() (bool, error)
	GetLoggerMock       func() (*slog.Logger, error)
	GetBuildInfoMock    func() (*build.Info, error)
	GetContextMock      func() context.Context
}

func (m *MockHelper) GetCmd() *cobra.Command {
	if m.GetCmdMock == nil {
		return &cobra.Command{}
	}
	return m.GetCmdMock()
}

func (m *MockHelper) GetArgs() []string {
	if m.GetArgsMock == nil {
		return nil
	}
	return m.GetArgsMock()
}

func (m *MockHelper) GetStreams() *iostreams.IOStreams {
	if m.GetStreamsMock == nil {
		return nil
	}
	return m.GetStreamsMock()
}

func (m *MockHelper) GetConfig() (config.Hook, error) {
	return m.GetConfigMock()
}

func (m *MockHelper) GetOutputFormat() (common.OutputFormat, error) {
	if m.GetOutputFormatMock == nil {
		return common.TEXT, nil
	}
	return m.GetOutputFormatMock()
}

func (m *MockHelper) IsInteractive() (bool, error) {
	if m.IsInteractiveMock == nil {
		return false, nil
	}
	return m.IsInteractiveMock()
}

func (m *MockHelper) GetLogger() (*slog.Logger, error) {
	if m.GetLoggerMock == nil {
		return slog.New(slog.DiscardHandler), nil
	}
	return m.GetLoggerMock()
}

func (m *MockHelper) GetBuildInfo() (*build.Info, error) {
	return m.GetBuildInfoMock()
}

func (m *MockHelper) GetContext() context.Context {
	if m.GetContextMock == nil {
		return context.Background()
	}
	return m.GetContextMock()
}
