package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Every color adapts to light and dark terminals.
var (
	SecondaryColor = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#A0A8B0"}
	HeadingColor   = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	MutedColor     = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}

	SuccessColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#FFC107", Dark: "#FFD54F"}
	InfoColor    = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}

	// Watched paths under the home directory
	HomeBranchColor = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"}
	// Watched paths anywhere else
	RootBranchColor = lipgloss.AdaptiveColor{Light: "#8B5CF6", Dark: "#A78BFA"}
)
