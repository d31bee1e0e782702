// SPDX-License-Identifier: MIT

package style

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode selects when ANSI colour is emitted.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ThemeMode selects the palette variant.
type ThemeMode string

const (
	ThemeAuto  ThemeMode = "auto"
	ThemeDark  ThemeMode = "dark"
	ThemeLight ThemeMode = "light"
)

// ThemeEnv overrides the configured theme when set.
const ThemeEnv = "GLAZE_THEME"

// Init applies the colour and theme settings to lipgloss. Call it once,
// before any rendering; empty values mean auto.
func Init(color, theme string) {
	if !useColor(ColorMode(strings.ToLower(color))) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.TrueColor)
	lipgloss.SetHasDarkBackground(darkBackground(resolveTheme(theme)))
}

// IsTerminal reports whether stdout is a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor applies the NO_COLOR, CLICOLOR and CLICOLOR_FORCE
// conventions, falling back to TTY detection.
func ShouldUseColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if _, ok := os.LookupEnv("CLICOLOR_FORCE"); ok {
		return true
	}

	return IsTerminal()
}

func useColor(m ColorMode) bool {
	switch m {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return ShouldUseColor()
	}
}

// resolveTheme: environment first, then config, then auto.
func resolveTheme(configTheme string) ThemeMode {
	for _, v := range []string{os.Getenv(ThemeEnv), configTheme} {
		switch ThemeMode(strings.ToLower(v)) {
		case ThemeDark:
			return ThemeDark
		case ThemeLight:
			return ThemeLight
		case ThemeAuto:
			return ThemeAuto
		}
	}

	return ThemeAuto
}

func darkBackground(m ThemeMode) bool {
	switch m {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}
