package theme

import (
	"context"
	"strings"
	"testing"

	tint "github.com/lrstanley/bubbletint"
	"github.com/stretchr/testify/require"
)

// tintPalette returns the first registered tint that does not collide with a
// built-in palette.
func tintPalette(t *testing.T) (tint.Tint, Palette) {
	t.Helper()
	for _, tn := range tint.DefaultTints() {
		id := sanitizeName(tn.ID())
		if id == "" || id == DefaultName || id == "dash-light" {
			continue
		}
		p, ok := Get(id)
		require.True(t, ok, id)
		return tn, p
	}
	t.Fatal("no tints registered")
	return nil, Palette{}
}

func TestAvailableIncludesBuiltinsAndTints(t *testing.T) {
	ids := Available()
	require.Contains(t, ids, "dash-dark")
	require.Contains(t, ids, "dash-light")
	require.IsIncreasing(t, ids)
	require.Greater(t, len(ids), 2)

	_, p := tintPalette(t)
	require.Contains(t, ids, p.Name)
}

func TestTintPalettesFillEveryToken(t *testing.T) {
	tn, p := tintPalette(t)
	for _, token := range []Token{
		ColorTextPrimary, ColorTextMuted, ColorBorder, ColorPrimary, ColorPrimaryText,
		ColorAccent, ColorDanger, ColorHighlight, ColorSelection,
	} {
		c := p.Color(token)
		require.NotEmpty(t, c.Light, token)
		require.Regexp(t, `^#[0-9A-F]{6}`, c.Light, token)
	}
	require.Equal(t, normalizeHex(tint.Hex(tn.Fg())), p.Color(ColorTextPrimary).Light)
	require.Equal(t, normalizeHex(tint.Hex(tn.Red())), p.Color(ColorDanger).Dark)
	require.Equal(t, strings.TrimSpace(tn.DisplayName()), p.DisplayName)
}

func TestBuiltinsWinOverTints(t *testing.T) {
	p, ok := Get(DefaultName)
	require.True(t, ok)
	require.Equal(t, "Dash Dark", p.DisplayName)
}

func TestContrastColor(t *testing.T) {
	require.Equal(t, "#121418", contrastColor("#F1FA8C"))
	require.Equal(t, "#F8F8F8", contrastColor("#282A36"))
}

func TestSetCurrentAndNext(t *testing.T) {
	t.Cleanup(func() { _ = SetCurrent(DefaultName) })

	require.NoError(t, SetCurrent("Dash-Light"))
	require.Equal(t, "dash-light", CurrentName())
	require.Error(t, SetCurrent("no-such-theme"))

	ids := Available()
	last := ids[len(ids)-1]
	require.Equal(t, ids[0], Next(last).Name)
	require.Equal(t, ids[1], Next(ids[0]).Name)
	require.Equal(t, ids[0], Next("unknown").Name)
}

func TestFromContext(t *testing.T) {
	p, _ := Get("dash-light")
	ctx := ContextWithPalette(context.Background(), p)
	require.Equal(t, "dash-light", FromContext(ctx).Name)
	require.Equal(t, Current().Name, FromContext(context.Background()).Name)
}

func TestFlag(t *testing.T) {
	f := NewFlag("bogus")
	require.Equal(t, DefaultName, f.String())
	_, p := tintPalette(t)
	require.NoError(t, f.Set(strings.ToUpper(p.Name)))
	require.Equal(t, p.Name, f.Value())
	require.Error(t, f.Set("bogus"))
}
