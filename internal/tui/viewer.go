package tui

import (
	"fmt"

	"github.com/Zuo-Peng/chat-export-viewer/internal/chat"
	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
	"github.com/Zuo-Peng/chat-export-viewer/internal/render"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pagerQuit adds q to the usual quit keys; the pager has no text input.
var pagerQuit = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))

// pagerModel scrolls through one rendered conversation.
type pagerModel struct {
	msgs     []parse.Message
	opts     render.Options
	title    string
	viewport viewport.Model
	ready    bool
}

func newPager(msgs []parse.Message, title string, opts render.Options) pagerModel {
	return pagerModel{msgs: msgs, opts: opts, title: title}
}

// RunViewer pages through msgs, scrolled to opts.HitLine when set.
func RunViewer(msgs []parse.Message, title string, opts render.Options) error {
	p := tea.NewProgram(newPager(msgs, title, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m pagerModel) Init() tea.Cmd {
	return nil
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// header (1) + footer (1)
		h := msg.Height - 2
		if h < 1 {
			h = 1
		}
		m.opts.Width = msg.Width
		content, hitLine := render.RenderChat(m.msgs, m.opts)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.viewport.SetContent(content)
		if hitLine > 0 {
			m.viewport.SetYOffset(hitLine)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pagerQuit):
			return m, tea.Quit
		case key.Matches(msg, keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return ""
	}
	header := headerStyle.Render(m.title)
	progress := detailStyle.Render(fmt.Sprintf("%d messages  %3.f%%", len(m.msgs), m.viewport.ScrollPercent()*100))
	footer := footerPadding.Render(progress + "  " + helpLine(keys.PageUp, keys.PageDown, keys.Top, keys.Bottom, pagerQuit))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}

// ViewerTitle is the pager header for an extracted archive entry: the chat
// title, participant count and entry name.
func ViewerTitle(msgs []parse.Message, entryName string) string {
	names := chat.Participants(msgs)
	return fmt.Sprintf("%s (%d participants) - %s", chat.Title(names), len(names), entryName)
}
