package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

const logoASCII = `
                 _     _       _     _
 _ __   ___   __| |___(_) __ _| |__ | |_
| '_ \ / _ \ / _` + "`" + ` / __| |/ _` + "`" + ` | '_ \| __|
| |_) | (_) | (_| \__ \ | (_| | | | | |_
| .__/ \___/ \__,_|___/_|\__, |_| |_|\__|
|_|                      |___/           `

// Logo returns the podsight ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
