package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	require.Equal(t, "550e8400", ShortID("550e8400-e29b-41d4-a716-446655440000"))
	require.Equal(t, "A1B2C3D4", ShortID("A1B2C3D4-E5F6-7890-ABCD-EF1234567890"))
	require.Equal(t, "users", ShortID("users"))
	require.Equal(t, "", ShortID(""))
}
