package theme

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultName is the built-in theme used when no override is provided.
const DefaultName = "dash-dark"

// Token represents a semantic color slot within the CLI.
type Token string

const (
	ColorTextPrimary   Token = "text.primary"
	ColorTextSecondary Token = "text.secondary"
	ColorTextMuted     Token = "text.muted"
	ColorBorder        Token = "border"
	ColorSurface       Token = "surface"
	ColorSurfaceText   Token = "surface.text"
	ColorPrimary       Token = "primary"
	ColorPrimaryText   Token = "primary.text"
	ColorAccent        Token = "accent"
	ColorAccentText    Token = "accent.text"
	ColorSuccess       Token = "success"
	ColorSuccessText   Token = "success.text"
	ColorInfo          Token = "info"
	ColorInfoText      Token = "info.text"
	ColorWarning       Token = "warning"
	ColorWarningText   Token = "warning.text"
	ColorDanger        Token = "danger"
	ColorDangerText    Token = "danger.text"
	ColorHighlight     Token = "highlight"
	// ColorSelection marks checked rows in the table view.
	ColorSelection Token = "selection"
)

// Color stores light and dark variants for adaptive rendering.
type Color struct {
	Light string
	Dark  string
}

// Adaptive converts the color into a lipgloss adaptive color.
func (c Color) Adaptive() lipgloss.AdaptiveColor {
	light, dark := strings.TrimSpace(c.Light), strings.TrimSpace(c.Dark)
	switch {
	case light == "" && dark == "":
		return lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#000000"}
	case light == "":
		light = dark
	case dark == "":
		dark = light
	}
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette represents a concrete theme.
type Palette struct {
	Name        string
	DisplayName string
	About       string
	Colors      map[Token]Color
}

// Color returns a color for the provided token, falling back to the default palette.
func (p Palette) Color(token Token) Color {
	if p.Colors != nil {
		if c, ok := p.Colors[token]; ok {
			return ensureColor(c, token)
		}
	}
	return fallbackColor(token)
}

// Adaptive returns the lipgloss adaptive color for the provided token.
func (p Palette) Adaptive(token Token) lipgloss.AdaptiveColor {
	return p.Color(token).Adaptive()
}

// ForegroundStyle returns a lipgloss style with the foreground set to the requested token.
func (p Palette) ForegroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Adaptive(token))
}

// BackgroundStyle returns a lipgloss style with the background set to the requested token.
func (p Palette) BackgroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Background(p.Adaptive(token))
}

type contextKey struct{}

var (
	registryOnce sync.Once
	registryMu   sync.RWMutex
	palettes     map[string]Palette
	current      Palette
	defaultPal   Palette
	themeKey     contextKey
)

// ContextWithPalette stores the palette on the context.
func ContextWithPalette(ctx context.Context, p Palette) context.Context {
	return context.WithValue(ctx, themeKey, p)
}

// FromContext returns the palette stored on the context or the current palette.
func FromContext(ctx context.Context) Palette {
	if ctx == nil {
		return Current()
	}
	if p, ok := ctx.Value(themeKey).(Palette); ok {
		return p
	}
	return Current()
}

// Available returns the list of registered theme IDs (sorted).
func Available() []string {
	ensureRegistry()

	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, 0, len(palettes))
	for k := range palettes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Exists returns true when a theme is registered.
func Exists(name string) bool {
	ensureRegistry()

	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := palettes[resolveName(name)]
	return ok
}

// Get returns the palette with the provided name.
func Get(name string) (Palette, bool) {
	ensureRegistry()

	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := palettes[resolveName(name)]
	return p, ok
}

// SetCurrent sets the active palette.
func SetCurrent(name string) error {
	ensureRegistry()

	name = resolveName(name)
	if name == "" {
		name = DefaultName
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	p, ok := palettes[name]
	if !ok {
		return fmt.Errorf("unknown color theme %q", name)
	}
	current = p
	return nil
}

// Current returns the active palette.
func Current() Palette {
	ensureRegistry()

	registryMu.RLock()
	defer registryMu.RUnlock()

	return current
}

// CurrentName returns the ID of the active palette.
func CurrentName() string {
	return resolveName(Current().Name)
}

// Next returns the palette registered after name in Available order,
// wrapping around at the end. Unknown names start from the first palette.
func Next(name string) Palette {
	ids := Available()
	if len(ids) == 0 {
		return Current()
	}
	name = resolveName(name)
	next := ids[0]
	for i, id := range ids {
		if id == name {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	p, _ := Get(next)
	return p
}

// Flag is a pflag.Value implementation for theme IDs.
type Flag struct {
	value string
}

// NewFlag returns a Flag with the provided default value.
func NewFlag(defaultValue string) *Flag {
	name := resolveName(defaultValue)
	if name == "" || !Exists(name) {
		name = DefaultName
	}
	return &Flag{value: name}
}

// String implements pflag.Value.
func (f *Flag) String() string {
	if f == nil {
		return DefaultName
	}
	return f.value
}

// Set implements pflag.Value.
func (f *Flag) Set(v string) error {
	name := resolveName(v)
	if name == "" {
		name = DefaultName
	}
	if !Exists(name) {
		return fmt.Errorf("invalid color theme %q", v)
	}
	f.value = name
	return nil
}

// Type implements pflag.Value.
func (f *Flag) Type() string {
	return "string"
}

// Value returns the currently selected theme ID.
func (f *Flag) Value() string {
	return f.String()
}

// ensureRegistry lazily loads the palettes.
func ensureRegistry() {
	registryOnce.Do(func() {
		registryMu.Lock()
		defer registryMu.Unlock()

		palettes = make(map[string]Palette)

		registerPalette(dashDarkPalette())
		registerPalette(dashLightPalette())
		defaultPal = palettes[DefaultName]
		current = defaultPal

		for _, t := range tint.DefaultTints() {
			p := paletteFromTint(t)
			// built-in palettes win over tints sharing an ID
			if _, taken := palettes[sanitizeName(p.Name)]; taken {
				continue
			}
			registerPalette(p)
		}
	})
}

func registerPalette(p Palette) {
	if p.Name == "" {
		return
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Name
	}
	if p.Colors == nil {
		p.Colors = map[Token]Color{}
	}
	p.Name = sanitizeName(p.Name)
	palettes[p.Name] = p
}

func ensureColor(c Color, token Token) Color {
	if strings.TrimSpace(c.Light) == "" && strings.TrimSpace(c.Dark) == "" {
		return fallbackColor(token)
	}
	if strings.TrimSpace(c.Light) == "" {
		c.Light = c.Dark
	}
	if strings.TrimSpace(c.Dark) == "" {
		c.Dark = c.Light
	}
	return c
}

func fallbackColor(token Token) Color {
	if defaultPal.Colors != nil {
		if c, ok := defaultPal.Colors[token]; ok {
			return ensureColor(c, token)
		}
	}
	return Color{Light: "#FFFFFF", Dark: "#000000"}
}

func sanitizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func resolveName(name string) string {
	return sanitizeName(name)
}

// paletteFromTint derives the semantic tokens from a terminal color scheme.
func paletteFromTint(t tint.Tint) Palette {
	if t == nil {
		return Palette{}
	}

	fg := normalizeHex(tint.Hex(t.Fg()))
	bg := normalizeHex(tint.Hex(t.Bg()))
	muted := normalizeHex(tint.Hex(t.BrightBlack()))
	accent := normalizeHex(tint.Hex(t.Cyan()))
	accentBright := normalizeHex(tint.Hex(t.BrightBlue()))
	success := normalizeHex(tint.Hex(t.Green()))
	info := normalizeHex(tint.Hex(t.Blue()))
	warning := normalizeHex(tint.Hex(t.Yellow()))
	danger := normalizeHex(tint.Hex(t.Red()))
	highlight := normalizeHex(tint.Hex(t.BrightWhite()))
	selection := blendHex(bg, accentBright, 0.3)

	colors := map[Token]Color{
		ColorTextPrimary:   pairColor(fg, fg),
		ColorTextSecondary: derivedTextSecondary(fg),
		ColorTextMuted:     mutedColor(muted),
		ColorBorder:        borderColor(muted),
		ColorSurface:       pairColor(bg, bg),
		ColorSurfaceText:   pairColor(fg, fg),
		ColorPrimary:       pairColor(accent, accent),
		ColorPrimaryText:   singleColor(contrastColor(accent)),
		ColorAccent:        pairColor(accentBright, accentBright),
		ColorAccentText:    singleColor(contrastColor(accentBright)),
		ColorSuccess:       pairColor(success, success),
		ColorSuccessText:   singleColor(contrastColor(success)),
		ColorInfo:          pairColor(info, info),
		ColorInfoText:      singleColor(contrastColor(info)),
		ColorWarning:       pairColor(warning, warning),
		ColorWarningText:   singleColor(contrastColor(warning)),
		ColorDanger:        pairColor(danger, danger),
		ColorDangerText:    singleColor(contrastColor(danger)),
		ColorHighlight:     pairColor(highlight, highlight),
		ColorSelection:     pairColor(selection, selection),
	}

	return Palette{
		Name:        sanitizeName(t.ID()),
		DisplayName: strings.TrimSpace(t.DisplayName()),
		About:       strings.TrimSpace(t.About()),
		Colors:      colors,
	}
}

func singleColor(hex string) Color {
	h := normalizeHex(hex)
	return Color{Light: h, Dark: h}
}

func pairColor(light, dark string) Color {
	return Color{
		Light: normalizeHex(light),
		Dark:  normalizeHex(dark),
	}
}

func mutedColor(hex string) Color {
	base := normalizeHex(hex)
	if base == "" {
		return Color{Light: "#646A7A", Dark: "#7C8298"}
	}
	return Color{
		Light: darkenHex(base, 0.35),
		Dark:  lightenHex(base, 0.35),
	}
}

func derivedTextSecondary(hex string) Color {
	base := normalizeHex(hex)
	if base == "" {
		return Color{Light: "#1F2026", Dark: "#D7D9E3"}
	}
	return Color{
		Light: darkenHex(base, 0.25),
		Dark:  lightenHex(base, 0.2),
	}
}

func borderColor(hex string) Color {
	base := normalizeHex(hex)
	if base == "" {
		return Color{Light: "#4A4D65", Dark: "#4A4D65"}
	}
	return Color{
		Light: darkenHex(base, 0.15),
		Dark:  lightenHex(base, 0.25),
	}
}

func normalizeHex(hex string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(hex, "#"))
	if trimmed == "" {
		return ""
	}
	switch len(trimmed) {
	case 3:
		var b strings.Builder
		b.WriteString("#")
		for _, r := range trimmed {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return strings.ToUpper(b.String())
	case 6:
		return "#" + strings.ToUpper(trimmed)
	case 8:
		return "#" + strings.ToUpper(trimmed)
	default:
		if len(trimmed) > 6 {
			return "#" + strings.ToUpper(trimmed[:6])
		}
		return "#" + strings.ToUpper(trimmed)
	}
}

func contrastColor(hex string) string {
	h := normalizeHex(hex)
	if h == "" {
		return "#121418"
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return "#121418"
	}
	if relativeLuminance(c) > 0.55 {
		return "#121418"
	}
	return "#F8F8F8"
}

func lightenHex(hex string, amount float64) string {
	return blendHex(hex, "#FFFFFF", amount)
}

func darkenHex(hex string, amount float64) string {
	return blendHex(hex, "#000000", amount)
}

// blendHex mixes from toward to in Lab space; amount is clamped to [0,1].
func blendHex(from, to string, amount float64) string {
	h := normalizeHex(from)
	if h == "" {
		return ""
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return h
	}
	target, err := colorful.Hex(normalizeHex(to))
	if err != nil {
		return h
	}
	return strings.ToUpper(c.BlendLab(target, clampFloat(amount, 0, 1)).Clamped().Hex())
}

func clampFloat(val, minVal, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func relativeLuminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func dashDarkPalette() Palette {
	return Palette{
		Name:        DefaultName,
		DisplayName: "Dash Dark",
		About:       "Slate surfaces with an indigo accent.",
		Colors: map[Token]Color{
			ColorTextPrimary:   singleColor("#F1F5F9"),
			ColorTextSecondary: singleColor("#CBD5E1"),
			ColorTextMuted:     singleColor("#94A3B8"),
			ColorBorder:        singleColor("#334155"),
			ColorSurface:       singleColor("#0F172A"),
			ColorSurfaceText:   singleColor("#F1F5F9"),
			ColorPrimary:       singleColor("#6366F1"),
			ColorPrimaryText:   singleColor("#FFFFFF"),
			ColorAccent:        singleColor("#A5B4FC"),
			ColorAccentText:    singleColor("#0F172A"),
			ColorSuccess:       singleColor("#22C55E"),
			ColorSuccessText:   singleColor("#052E16"),
			ColorInfo:          singleColor("#38BDF8"),
			ColorInfoText:      singleColor("#082F49"),
			ColorWarning:       singleColor("#FACC15"),
			ColorWarningText:   singleColor("#422006"),
			ColorDanger:        singleColor("#EF4444"),
			ColorDangerText:    singleColor("#FFFFFF"),
			ColorHighlight:     singleColor("#1E293B"),
			ColorSelection:     singleColor("#312E81"),
		},
	}
}

func dashLightPalette() Palette {
	return Palette{
		Name:        "dash-light",
		DisplayName: "Dash Light",
		About:       "White surfaces with an indigo accent.",
		Colors: map[Token]Color{
			ColorTextPrimary:   singleColor("#0F172A"),
			ColorTextSecondary: singleColor("#334155"),
			ColorTextMuted:     singleColor("#64748B"),
			ColorBorder:        singleColor("#E2E8F0"),
			ColorSurface:       singleColor("#FFFFFF"),
			ColorSurfaceText:   singleColor("#0F172A"),
			ColorPrimary:       singleColor("#4F46E5"),
			ColorPrimaryText:   singleColor("#FFFFFF"),
			ColorAccent:        singleColor("#4338CA"),
			ColorAccentText:    singleColor("#FFFFFF"),
			ColorSuccess:       singleColor("#15803D"),
			ColorSuccessText:   singleColor("#FFFFFF"),
			ColorInfo:          singleColor("#0369A1"),
			ColorInfoText:      singleColor("#FFFFFF"),
			ColorWarning:       singleColor("#A16207"),
			ColorWarningText:   singleColor("#FFFFFF"),
			ColorDanger:        singleColor("#B91C1C"),
			ColorDangerText:    singleColor("#FFFFFF"),
			ColorHighlight:     singleColor("#F1F5F9"),
			ColorSelection:     singleColor("#E0E7FF"),
		},
	}
}
