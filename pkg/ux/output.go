// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the constraintbench CLI.
package ux

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorTealBright = lipgloss.Color("#2CD7C7")
	ColorTealDeep   = lipgloss.Color("#16858E")
	ColorSlate      = lipgloss.Color("#2C4A54")
	ColorWarning    = lipgloss.Color("#F4D03F")
	ColorError      = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorTealBright),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
}

// Title prints a styled title line
func Title(text string) {
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with a checkmark
func Success(text string) {
	fmt.Printf("%s %s\n", Styles.Success.Render("✓"), text)
}

// Warning prints a warning message
func Warning(text string) {
	fmt.Printf("%s %s\n", Styles.Warning.Render("⚠"), text)
}

// Error prints an error message
func Error(text string) {
	fmt.Printf("%s %s\n", Styles.Error.Render("✗"), text)
}

// Info prints an informational message
func Info(text string) {
	fmt.Printf("%s %s\n", Styles.Highlight.Render("→"), text)
}

// Muted prints de-emphasized text
func Muted(text string) {
	fmt.Println(Styles.Muted.Render(text))
}
