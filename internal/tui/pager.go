// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultPagerHeight = 20
	// pagerChrome is the title line plus the footer line.
	pagerChrome = 2
)

var (
	pagerTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	pagerFooter = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	pagerQuit = key.NewBinding(
		key.WithKeys("q", "esc", "enter", "ctrl+c"),
		key.WithHelp("q/Enter", "close"),
	)
	pagerScroll = key.NewBinding(
		key.WithKeys("up", "down", "pgup", "pgdown"),
		key.WithHelp("↑/↓", "navigate"),
	)
)

// PagerOptions configures Pager. Zero sizes use 80x20 until the terminal
// reports its size.
type PagerOptions struct {
	Title   string
	Content string
	Width   int
	Height  int
	Config  Config
}

type pagerModel struct {
	viewport viewport.Model
	title    string
	width    int
	closed   bool
}

func newPagerModel(opts PagerOptions) *pagerModel {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultPagerHeight
	}
	m := &pagerModel{
		viewport: viewport.New(width, 1),
		title:    opts.Title,
	}
	m.resize(width, height)
	m.viewport.SetContent(opts.Content)
	return m
}

func (m *pagerModel) resize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = max(1, height-pagerChrome)
}

func (m *pagerModel) Init() tea.Cmd { return nil }

func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, pagerQuit) {
			m.closed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *pagerModel) View() string {
	if m.closed {
		return ""
	}
	var sb strings.Builder
	if m.title != "" {
		sb.WriteString(pagerTitle.Render(m.title))
		sb.WriteByte('\n')
	}
	sb.WriteString(m.viewport.View())
	sb.WriteByte('\n')
	sb.WriteString(pagerFooter.Render(helpLine(pagerScroll, pagerQuit)))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(sb.String())
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + ": " + h.Desc
	}
	return strings.Join(parts, " • ")
}

// Pager shows content full screen until the user closes it or ctx ends.
func Pager(ctx context.Context, opts PagerOptions) error {
	_, err := tea.NewProgram(newPagerModel(opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(opts.Config.input()),
		tea.WithOutput(opts.Config.output()),
	).Run()
	return err
}
