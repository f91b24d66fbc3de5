// Package styles contains Lip Gloss style definitions for the player chrome.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Status
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#E1A200", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Instruction kind colors used by the status line counts.
	KindMovedColor   = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	KindAddedColor   = lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"}
	KindRemovedColor = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"}
	KindMovedStyle   = lipgloss.NewStyle().Foreground(KindMovedColor)
	KindAddedStyle   = lipgloss.NewStyle().Foreground(KindAddedColor)
	KindRemovedStyle = lipgloss.NewStyle().Foreground(KindRemovedColor)

	// Button colors
	ButtonTextColor           = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor      = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	ButtonSecondaryBgColor    = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#2D3436"}
	ButtonDisabledBgColor     = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#2D2D2D"}
	ButtonDisabledTextColor   = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#666666"}
	baseButtonStyle           = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	PrimaryButtonStyle        = baseButtonStyle.Foreground(ButtonTextColor).Background(ButtonPrimaryBgColor)
	SecondaryButtonStyle      = baseButtonStyle.Foreground(ButtonTextColor).Background(ButtonSecondaryBgColor)
	DisabledButtonStyle       = baseButtonStyle.Foreground(ButtonDisabledTextColor).Background(ButtonDisabledBgColor)
	StepIndicatorStyle        = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	StepIndicatorCurrentStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor).
			Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true)
)

// ApplyTheme applies custom chrome colors from configuration.
// Empty strings are ignored, keeping the default values.
func ApplyTheme(muted, warning, errorColor string) {
	if muted != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		StatusBarStyle = StatusBarStyle.Foreground(TextMutedColor)
	}
	if warning != "" {
		StatusWarningColor = lipgloss.AdaptiveColor{Light: warning, Dark: warning}
		WarningStyle = WarningStyle.Foreground(StatusWarningColor)
	}
	if errorColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errorColor, Dark: errorColor}
		ErrorStyle = ErrorStyle.Foreground(StatusErrorColor)
	}
}
