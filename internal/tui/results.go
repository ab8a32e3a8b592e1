package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/search"
	"github.com/mattn/go-runewidth"
)

// rowHeight is how many terminal lines one result takes.
const rowHeight = 2

var markerStripper = strings.NewReplacer(">>>", "", "<<<", "")

// resultList is the left panel: results with a cursor and a scroll window.
type resultList struct {
	items  []search.Result
	cursor int
	top    int // first visible item
}

func (l *resultList) reset(items []search.Result) {
	l.items = items
	l.cursor, l.top = 0, 0
}

func (l resultList) current() (search.Result, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return search.Result{}, false
	}
	return l.items[l.cursor], true
}

func fitting(rows int) int {
	return max(rows/rowHeight, 1)
}

// move shifts the cursor by delta, clamped to the list, and keeps it inside
// a window of rows lines. It reports whether the cursor changed.
func (l *resultList) move(delta, rows int) bool {
	if len(l.items) == 0 {
		return false
	}
	next := min(max(l.cursor+delta, 0), len(l.items)-1)
	if next == l.cursor {
		return false
	}
	l.cursor = next
	if l.cursor < l.top {
		l.top = l.cursor
	}
	if n := fitting(rows); l.cursor >= l.top+n {
		l.top = l.cursor - n + 1
	}
	return true
}

// scroll moves the window without touching the cursor.
func (l *resultList) scroll(delta, rows int) {
	last := max(len(l.items)-fitting(rows), 0)
	l.top = min(max(l.top+delta, 0), last)
}

// itemAt maps a row inside the panel to an item index, or -1.
func (l resultList) itemAt(row int) int {
	if row < 0 {
		return -1
	}
	i := l.top + row/rowHeight
	if i >= len(l.items) {
		return -1
	}
	return i
}

func (l resultList) render(width, rows int, empty string) string {
	if len(l.items) == 0 {
		return emptyStyle.Width(width).Height(rows).Render(empty)
	}
	lines := make([]string, 0, rows)
	for i := l.top; i < len(l.items) && len(lines)+rowHeight <= rows; i++ {
		lines = append(lines, chatRow(l.items[i], width, i == l.cursor)...)
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// chatRow draws a result in two lines. The first holds the chat title and
// the day of the hit (or of the last message). The second holds the hit as
// "sender: snippet", or for whole-chat rows the message count and members.
func chatRow(r search.Result, width int, selected bool) []string {
	marker, style := "  ", titleStyle
	if selected {
		marker, style = cursorStyle.Render("▌ "), cursorStyle
	}

	date := dayLabel(r.Ts)
	titleW := width - 2 - runewidth.StringWidth(date) - 1
	title := fit(oneLine(r.Title), titleW)
	gap := max(titleW-runewidth.StringWidth(title), 0) + 1
	head := marker + style.Render(title) + strings.Repeat(" ", gap) + detailStyle.Render(date)

	bodyW := width - 2
	var body string
	if r.Line > 0 {
		sender := fit(oneLine(r.Sender), bodyW/3)
		rest := bodyW - runewidth.StringWidth(sender) - 2
		body = senderStyle.Render(sender) + detailStyle.Render(": "+fit(markerStripper.Replace(oneLine(r.Snippet)), rest))
	} else {
		body = detailStyle.Render(fit(fmt.Sprintf("%d msgs · %s", r.MessageCount, r.Participants), bodyW))
	}
	return []string{head, "  " + body}
}

// dayLabel shortens a stored RFC3339 timestamp to "05 Mar 23".
func dayLabel(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		if len(ts) > 10 {
			return ts[:10]
		}
		return ts
	}
	return t.Format("02 Jan 06")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fit cuts s to at most width columns.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
