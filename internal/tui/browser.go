package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/Zuo-Peng/chat-export-viewer/internal/render"
	"github.com/Zuo-Peng/chat-export-viewer/internal/search"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const settleDelay = 200 * time.Millisecond

type browseMode int

const (
	searchMode browseMode = iota // filter is an FTS query over messages
	listMode                     // filter matches chat titles and members
)

type resultsMsg struct {
	seq   int
	items []search.Result
	err   error
}

// settleMsg fires once typing has paused for settleDelay.
type settleMsg struct {
	seq int
}

// browser is the search and list screen: a filter on top, results on the
// left and the selected chat on the right.
type browser struct {
	db     *index.DB
	opts   search.Options
	me     string
	mode   browseMode
	filter textinput.Model
	list   resultList
	pane   chatPane
	size   layout
	focus  area
	seq    int // bumped on every filter edit; replies for older edits are dropped
	ready  bool
	picked *search.Result
	done   bool
}

func newBrowser(db *index.DB, mode browseMode, query string, opts search.Options, me string) browser {
	in := textinput.New()
	in.Prompt = "search › "
	in.Placeholder = "words in messages"
	if mode == listMode {
		in.Prompt = "chats › "
		in.Placeholder = "title or participant"
	}
	in.PromptStyle = promptStyle
	in.CharLimit = 256
	in.SetValue(query)
	in.Focus()

	return browser{
		db:     db,
		opts:   opts,
		me:     me,
		mode:   mode,
		filter: in,
		pane:   newChatPane(),
		focus:  areaList,
	}
}

// Run opens the search screen seeded with query. Picking a result copies the
// hit message to the clipboard.
func Run(db *index.DB, query string, opts search.Options, currentUser string) error {
	return browse(db, newBrowser(db, searchMode, query, opts, currentUser))
}

// RunList opens the chat list, most recently active first.
func RunList(db *index.DB, opts search.Options, currentUser string) error {
	return browse(db, newBrowser(db, listMode, "", opts, currentUser))
}

func browse(db *index.DB, b browser) error {
	final, err := tea.NewProgram(b, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if picked := final.(browser).picked; picked != nil {
		return copySelection(db, *picked)
	}
	return nil
}

func (b browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, b.fetch())
}

func (b browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.size = newLayout(msg.Width, msg.Height)
		b.pane.resize(b.size.paneW, b.size.bodyH)
		b.ready = true
		cmd := b.showCurrent()
		return b, cmd

	case tea.KeyMsg:
		return b.onKey(msg)

	case tea.MouseMsg:
		return b.onMouse(msg)

	case settleMsg:
		if msg.seq != b.seq {
			return b, nil
		}
		return b, b.fetch()

	case resultsMsg:
		if msg.seq != b.seq {
			return b, nil
		}
		if msg.err != nil {
			b.list.reset(nil)
			b.pane.clear("Error: " + msg.err.Error())
			return b, nil
		}
		b.list.reset(msg.items)
		if len(msg.items) == 0 {
			b.pane.clear("")
			return b, nil
		}
		cmd := b.showCurrent()
		return b, cmd

	case renderedMsg:
		b.pane.apply(msg)
		return b, nil
	}
	return b, nil
}

func (b browser) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := b.size.bodyH
	switch {
	case key.Matches(msg, keys.Quit):
		b.done = true
		return b, tea.Quit

	case key.Matches(msg, keys.Pick):
		if r, ok := b.list.current(); ok {
			b.picked = &r
			b.done = true
			return b, tea.Quit
		}
		return b, nil

	case key.Matches(msg, keys.Focus):
		if b.focus == areaList {
			b.focus = areaPane
		} else {
			b.focus = areaList
		}
		return b, nil

	case key.Matches(msg, keys.HalfUp):
		b.pane.vp.HalfPageUp()
		return b, nil

	case key.Matches(msg, keys.HalfDown):
		b.pane.vp.HalfPageDown()
		return b, nil
	}

	if b.focus == areaPane {
		return b.onPaneKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Prev):
		return b.moveCursor(-1)
	case key.Matches(msg, keys.Next):
		return b.moveCursor(1)
	case key.Matches(msg, keys.PageUp):
		return b.moveCursor(-fitting(rows))
	case key.Matches(msg, keys.PageDown):
		return b.moveCursor(fitting(rows))
	}

	before := b.filter.Value()
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	if b.filter.Value() == before {
		return b, cmd
	}
	b.seq++
	seq := b.seq
	settle := tea.Tick(settleDelay, func(time.Time) tea.Msg { return settleMsg{seq: seq} })
	return b, tea.Batch(cmd, settle)
}

// onPaneKey scrolls the chat while the right panel has focus. Typing is
// ignored there so letters like g and G can move through the chat.
func (b browser) onPaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &b.pane.vp
	switch {
	case key.Matches(msg, keys.Prev):
		vp.ScrollUp(1)
	case key.Matches(msg, keys.Next):
		vp.ScrollDown(1)
	case key.Matches(msg, keys.PageUp):
		vp.PageUp()
	case key.Matches(msg, keys.PageDown):
		vp.PageDown()
	case key.Matches(msg, keys.Top):
		vp.GotoTop()
	case key.Matches(msg, keys.Bottom):
		vp.GotoBottom()
	}
	return b, nil
}

func (b browser) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if !b.list.move(delta, b.size.bodyH) {
		return b, nil
	}
	cmd := b.showCurrent()
	return b, cmd
}

func (b browser) onMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	where, row := b.size.locate(msg.X, msg.Y)
	switch where {
	case areaList:
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			b.list.scroll(-1, b.size.bodyH)
		case msg.Button == tea.MouseButtonWheelDown:
			b.list.scroll(1, b.size.bodyH)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			b.focus = areaList
			if i := b.list.itemAt(row); i >= 0 && i != b.list.cursor {
				return b.moveCursor(i - b.list.cursor)
			}
		}
	case areaPane:
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			b.pane.vp.ScrollUp(3)
		case msg.Button == tea.MouseButtonWheelDown:
			b.pane.vp.ScrollDown(3)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			b.focus = areaPane
		}
	}
	return b, nil
}

// fetch loads results for the current filter, tagged with the current edit.
func (b browser) fetch() tea.Cmd {
	db, opts, mode, seq := b.db, b.opts, b.mode, b.seq
	opts.Query = strings.TrimSpace(b.filter.Value())
	return func() tea.Msg {
		var items []search.Result
		var err error
		switch {
		case mode == listMode:
			items, err = search.ListAll(db, opts)
		case opts.Query != "":
			items, err = search.Search(db, opts)
		}
		return resultsMsg{seq: seq, items: items, err: err}
	}
}

// showCurrent asks for a render of the selected chat unless it is already
// on screen at the current width.
func (b *browser) showCurrent() tea.Cmd {
	r, ok := b.list.current()
	if !ok || !b.ready {
		return nil
	}
	k := paneKey{chatKey: r.ChatKey, line: r.Line}
	b.pane.want = k
	if k == b.pane.shown {
		return nil
	}
	opts := render.Options{CurrentUser: b.me, Width: b.size.paneW}
	if b.mode == searchMode {
		opts.Query = b.filter.Value()
	}
	return renderChatCmd(b.db, k, opts)
}

func (b browser) View() string {
	if b.done || !b.ready {
		return ""
	}

	empty := "No matching messages"
	if b.mode == listMode {
		empty = "No chats indexed yet, run cev index"
	} else if strings.TrimSpace(b.filter.Value()) == "" {
		empty = "Type to search"
	}

	list := box(b.focus == areaList).
		Width(b.size.listW).
		Height(b.size.bodyH).
		Render(b.list.render(b.size.listW, b.size.bodyH, empty))
	pane := box(b.focus == areaPane).
		Width(b.size.paneW).
		Height(b.size.bodyH).
		Render(b.pane.vp.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		b.filter.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, pane),
		b.footer(),
	)
}

func (b browser) footer() string {
	count := fmt.Sprintf("%d chats", len(b.list.items))
	if b.mode == searchMode {
		count = fmt.Sprintf("%d hits", len(b.list.items))
	}
	help := helpLine(keys.Prev, keys.Next, keys.Focus, keys.HalfDown, keys.Pick, keys.Quit)
	if b.focus == areaPane {
		help = helpLine(keys.Prev, keys.Next, keys.Top, keys.Bottom, keys.Focus, keys.Quit)
	}
	return footerPadding.Render(detailStyle.Render(count) + "  " + help)
}
