// Package topics adds topic-based help to a Cobra application. Topics are
// text or markdown files read from an fs.FS, so they can be embedded in the
// binary.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Manager holds the topics found in a directory.
type Manager struct {
	fsys         fs.FS
	dir          string
	topics       map[string]*Topic
	originalHelp func(*cobra.Command, []string)
	extensions   []string
	renderer     Renderer
}

// Topic represents a help topic
type Topic struct {
	Name    string
	Path    string
	Content string
}

// Options configures the Manager
type Options struct {
	// Extensions is the list of file extensions to consider as topics.
	// Defaults to [".txt", ".md"].
	Extensions []string

	// Renderer formats topic content. Defaults to PlainRenderer.
	Renderer Renderer

	// Annotations are set on the installed help command.
	Annotations map[string]string
}

// New creates a Manager over dir inside fsys and scans it.
func New(fsys fs.FS, dir string, opts Options) (*Manager, error) {
	m := &Manager{
		fsys:       fsys,
		dir:        dir,
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".txt", ".md"}
	}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}
	if err := m.scan(); err != nil {
		return nil, fmt.Errorf("failed to scan topics: %w", err)
	}
	return m, nil
}

func (m *Manager) scan() error {
	if _, err := fs.Stat(m.fsys, m.dir); err != nil {
		// No directory, no topics
		return nil
	}

	return fs.WalkDir(m.fsys, m.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := path.Ext(p)
		if !m.supported(ext) {
			return nil
		}

		content, err := fs.ReadFile(m.fsys, p)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{Name: name, Path: p, Content: string(content)}
		return nil
	})
}

func (m *Manager) supported(ext string) bool {
	for _, valid := range m.extensions {
		if ext == valid {
			return true
		}
	}
	return false
}

// GetTopic retrieves a topic by name. Flag-style names ("--dry-run") find
// the matching "option-" topic.
func (m *Manager) GetTopic(name string) (*Topic, bool) {
	name = strings.TrimPrefix(name, "--")
	name = strings.TrimPrefix(name, "-")

	if topic, ok := m.topics[name]; ok {
		return topic, true
	}
	topic, ok := m.topics["option-"+name]
	return topic, ok
}

// ListTopics returns all topic names, sorted.
func (m *Manager) ListTopics() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render returns the formatted content of a topic.
func (m *Manager) Render(topic *Topic) string {
	return m.renderer.Render(topic.Content, path.Ext(topic.Path))
}

// Install replaces the help command of rootCmd with one that also knows
// about the topics in fsys.
func Install(rootCmd *cobra.Command, fsys fs.FS, dir string, opts Options) (*Manager, error) {
	m, err := New(fsys, dir, opts)
	if err != nil {
		return nil, err
	}
	m.originalHelp = rootCmd.HelpFunc()
	name := rootCmd.Name()

	helpCmd := &cobra.Command{
		Use:         "help [command or topic]",
		Short:       "Help about any command or topic",
		Annotations: opts.Annotations,
		Long: `Help provides help for any command or topic in the application.
Simply type ` + name + ` help [path to command or topic] for full details.

To see all available help topics:
  ` + name + ` help topics`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.ListTopics()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				m.originalHelp(rootCmd, []string{})
				return
			}
			if args[0] == "topics" {
				m.writeList(out, name)
				return
			}
			if topic, ok := m.GetTopic(args[0]); ok {
				_, _ = fmt.Fprint(out, m.Render(topic))
				return
			}

			// Not a topic, so it names a command
			target, _, err := rootCmd.Find(args)
			if err != nil || target == nil {
				m.originalHelp(rootCmd, args)
				return
			}
			m.originalHelp(target, args)
		},
	}

	for _, c := range rootCmd.Commands() {
		if c.Name() == "help" {
			rootCmd.RemoveCommand(c)
			break
		}
	}
	rootCmd.SetHelpCommand(helpCmd)

	return m, nil
}

func (m *Manager) writeList(w io.Writer, appName string) {
	names := m.ListTopics()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(w, "No help topics available.")
		return
	}

	var options, general []string
	for _, name := range names {
		if strings.HasPrefix(name, "option-") {
			options = append(options, strings.TrimPrefix(name, "option-"))
		} else {
			general = append(general, name)
		}
	}

	_, _ = fmt.Fprintln(w, "Available help topics:")
	if len(general) > 0 {
		_, _ = fmt.Fprintln(w, "\nGeneral topics:")
		for _, name := range general {
			_, _ = fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if len(options) > 0 {
		_, _ = fmt.Fprintln(w, "\nOption topics:")
		for _, name := range options {
			_, _ = fmt.Fprintf(w, "  --%s\n", name)
		}
	}
	_, _ = fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", appName)
}
