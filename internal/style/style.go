// SPDX-License-Identifier: MIT

// Package style renders glaze results for the terminal with lipgloss.
//
// Colours are adaptive (light/dark variants of the Ayu palette) and collapse
// to plain text when Init selects the ASCII profile, so every renderer is
// safe to pipe.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	ColorFlux   = lipgloss.AdaptiveColor{Light: "#fa8d3e", Dark: "#ff8f40"}
)

var (
	// Success marks converged solves and passing checks.
	Success = lipgloss.NewStyle().Foreground(ColorPass).Bold(true)

	// Warning marks stalled solves and skipped oxides.
	Warning = lipgloss.NewStyle().Foreground(ColorWarn).Bold(true)

	// Error marks failed recipes and blend points.
	Error = lipgloss.NewStyle().Foreground(ColorFail).Bold(true)

	// Info is used for oxide symbols outside the flux group.
	Info = lipgloss.NewStyle().Foreground(ColorAccent)

	// Flux highlights flux oxides.
	Flux = lipgloss.NewStyle().Foreground(ColorFlux)

	// Dim is for secondary information.
	Dim = lipgloss.NewStyle().Foreground(ColorMuted)

	Bold = lipgloss.NewStyle().Bold(true)

	// Title heads each rendered block.
	Title = lipgloss.NewStyle().Bold(true).Underline(true)
)
