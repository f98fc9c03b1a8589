package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles behind the markup tags of the same name.
var (
	SubtitleStyle = lipgloss.NewStyle().Foreground(HeadingColor).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	BoldStyle     = lipgloss.NewStyle().Bold(true)
	PathStyle     = lipgloss.NewStyle().Foreground(SecondaryColor).Italic(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)

	HomeBranchStyle = lipgloss.NewStyle().Foreground(HomeBranchColor).Bold(true)
	RootBranchStyle = lipgloss.NewStyle().Foreground(RootBranchColor).Bold(true)
)

// Line markers, written as markup so plain output keeps the glyph only.
const (
	DoneMark    = "[success]✓[/success]"
	NoteMark    = "[info]•[/info]"
	PlanMark    = "[info]→[/info]"
	DroppedMark = "[warning]![/warning]"
	MissingMark = "[warning]?[/warning]"
	HomeMark    = "[home]~[/home]"
	RootMark    = "[root]/[/root]"
)
