package normalizers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExamplesIndentsEveryLine(t *testing.T) {
	in := `
		# View the users dataset
		dashctl view users

		# Export everything
		dashctl export users --all
	`
	want := "  # View the users dataset\n  dashctl view users\n\n  # Export everything\n  dashctl export users --all"
	require.Equal(t, want, Examples(in))
	require.Equal(t, "", Examples("   "))
}

func TestLongDescTrims(t *testing.T) {
	require.Equal(t, "Render a dataset.", LongDesc("\n  Render a dataset.\n"))
}
