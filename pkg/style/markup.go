package style

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// tagPattern matches a [tag]content[/tag] pair.
var tagPattern = regexp.MustCompile(`\[([a-z_]+)\]([^\[]*?)\[/([a-z_]+)\]`)

// MarkupParser renders messages written with [tag]...[/tag] markup, such as
// "[path]/etc/hosts[/path] is [warning]missing[/warning]".
type MarkupParser struct {
	styles map[string]lipgloss.Style
	// plain drops the tags without styling, for non-terminal output.
	plain bool
}

// NewMarkupParser creates a parser with the default styles.
func NewMarkupParser() *MarkupParser {
	return &MarkupParser{
		styles: map[string]lipgloss.Style{
			"subtitle": SubtitleStyle,
			"success":  SuccessStyle,
			"error":    ErrorStyle,
			"warning":  WarningStyle,
			"info":     InfoStyle,
			"path":     PathStyle,
			"muted":    MutedStyle,
			"bold":     BoldStyle,
			"home":     HomeBranchStyle,
			"root":     RootBranchStyle,
		},
	}
}

// NewPlainParser creates a parser that only strips markup.
func NewPlainParser() *MarkupParser {
	p := NewMarkupParser()
	p.plain = true
	return p
}

// Render replaces every known tag pair with its styled content. Tags do not
// nest; unknown tags are left untouched.
func (p *MarkupParser) Render(text string) string {
	return tagPattern.ReplaceAllStringFunc(text, func(match string) string {
		m := tagPattern.FindStringSubmatch(match)
		if m[1] != m[3] {
			return match
		}
		style, ok := p.styles[m[1]]
		if !ok {
			return match
		}
		if p.plain {
			return m[2]
		}
		return style.Render(m[2])
	})
}
