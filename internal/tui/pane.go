package tui

import (
	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/Zuo-Peng/chat-export-viewer/internal/render"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// paneKey identifies one rendering of a chat: the chat and the hit line.
type paneKey struct {
	chatKey string
	line    int
}

type renderedMsg struct {
	key     paneKey
	content string
	hitLine int
	err     error
}

// hitMargin is how many lines stay visible above a hit.
const hitMargin = 2

// chatPane is the right panel showing the selected chat, rendered off the
// update loop. Only the render matching want is ever displayed.
type chatPane struct {
	vp    viewport.Model
	want  paneKey
	shown paneKey
}

func newChatPane() chatPane {
	return chatPane{vp: viewport.New(0, 0)}
}

func renderChatCmd(db *index.DB, k paneKey, opts render.Options) tea.Cmd {
	return func() tea.Msg {
		opts.HitLine = k.line
		out, hit, err := render.RenderStoredChat(db, k.chatKey, opts)
		return renderedMsg{key: k, content: out, hitLine: hit, err: err}
	}
}

func (p *chatPane) apply(msg renderedMsg) {
	if msg.key != p.want {
		return
	}
	p.shown = msg.key
	if msg.err != nil {
		p.vp.SetContent("Preview error: " + msg.err.Error())
		p.vp.GotoTop()
		return
	}
	p.vp.SetContent(msg.content)
	p.vp.SetYOffset(max(msg.hitLine-hitMargin, 0))
}

func (p *chatPane) clear(text string) {
	p.want, p.shown = paneKey{}, paneKey{}
	p.vp.SetContent(text)
	p.vp.GotoTop()
}

// resize changes the pane size; the chat must be rendered again to rewrap.
func (p *chatPane) resize(width, height int) {
	p.vp.Width, p.vp.Height = width, height
	p.shown = paneKey{}
}
