package render

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/chat-export-viewer/internal/chat"
	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
	"github.com/mattn/go-runewidth"
)

const (
	colorReset   = "\033[0m"
	colorHeader  = "\033[1;37;42m" // bold white on green
	colorNotice  = "\033[33m"      // yellow
	colorDay     = "\033[2;7m"     // dim reverse
	colorDim     = "\033[2m"       // dim
	colorItalic  = "\033[3;2m"     // dim italic
	colorMedia   = "\033[36m"      // cyan
	colorTick    = "\033[1;34m"    // bold blue read receipts
	colorHit     = "\033[43m"      // yellow background
	colorBoldRed = "\033[1;31m"    // bold red for keyword highlights
)

// senderColors is the palette senders are hashed into.
var senderColors = []string{
	"\033[1;32m",
	"\033[1;35m",
	"\033[1;33m",
	"\033[1;36m",
	"\033[1;31m",
	"\033[1;34m",
}

const (
	defaultWidth = 80
	mediaLabel   = "[media] "
	readReceipt  = "✓✓"
	deletedLabel = "This message was deleted"
	dayLayout    = "Monday, January 2, 2006"
	spanLayout   = "02/01/2006"
	timeLayout   = "15:04"
)

type Options struct {
	CurrentUser string // messages from this sender are right-aligned
	Width       int    // wrap width (0 = 80)
	Query       string // search query for keyword highlighting
	HitLine     int    // export line of the message to mark, 0 = none
	Context     int    // messages before/after the hit to show, 0 = all
}

// ftsOperators are FTS5 operators that should not be highlighted as keywords.
var ftsOperators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// queryTerms returns the highlightable words of an FTS query, longest first
// so a longer term wins over its own prefix.
func queryTerms(query string) []string {
	var terms []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*`)
		if t != "" && !ftsOperators[t] {
			terms = append(terms, t)
		}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return utf8.RuneCountInString(terms[i]) > utf8.RuneCountInString(terms[j])
	})
	return terms
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red
// ANSI codes. Matching walks runes of the original text, so case folds that
// change byte length never shift the cut points.
func highlightKeywords(text, query string) string {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return text
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		if n := matchTerm(text[i:], terms); n > 0 {
			b.WriteString(colorBoldRed + text[i:i+n] + colorReset)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// matchTerm returns the byte length of the first term s starts with, ignoring
// case, or 0.
func matchTerm(s string, terms []string) int {
	for _, t := range terms {
		n := runePrefixLen(s, utf8.RuneCountInString(t))
		if n > 0 && strings.EqualFold(s[:n], t) {
			return n
		}
	}
	return 0
}

// runePrefixLen is the byte length of the first count runes of s, or 0 when
// s is shorter.
func runePrefixLen(s string, count int) int {
	i := 0
	for ; count > 0; count-- {
		if i >= len(s) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// visibleWidth measures s in terminal columns, ignoring ANSI escapes.
func visibleWidth(s string) int {
	w := 0
	i := 0
	for i < len(s) {
		if n := escapeLen(s[i:]); n > 0 {
			i += n
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		w += runewidth.RuneWidth(r)
		i += size
	}
	return w
}

// escapeLen returns the byte length of the ANSI escape sequence ESC[ ... m
// at the start of s, or 0.
func escapeLen(s string) int {
	if len(s) < 2 || s[0] != '\033' || s[1] != '[' {
		return 0
	}
	j := 2
	for j < len(s) && s[j] != 'm' {
		j++
	}
	if j < len(s) {
		j++ // include 'm'
	}
	return j
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if n := escapeLen(line[i:]); n > 0 {
			cur.WriteString(line[i : i+n])
			i += n
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

func alignRight(s string, width int) string {
	pad := width - visibleWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func center(s string, width int) string {
	pad := (width - visibleWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func senderColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return senderColors[h.Sum32()%uint32(len(senderColors))]
}

// messageBody returns the styled text of a message before wrapping.
func messageBody(m parse.Message, query string) string {
	switch {
	case m.IsMedia:
		return colorMedia + mediaLabel + m.Content + colorReset
	case chat.IsDeleted(m):
		return colorItalic + deletedLabel + colorReset
	default:
		return highlightKeywords(m.Content, query)
	}
}

// RenderChat renders a parsed conversation grouped by day and returns the
// content and the 0-based output line of the hit message header (-1 if no hit).
func RenderChat(msgs []parse.Message, opts Options) (string, int) {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	bubbleW := width * 3 / 4
	if bubbleW < 10 {
		bubbleW = width
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	// header
	first, last := chat.Span(msgs)
	title := chat.Title(chat.Participants(msgs))
	if len(msgs) > 0 {
		title = fmt.Sprintf("%s  %s - %s", title, first.Format(spanLayout), last.Format(spanLayout))
	}
	writeLine(colorHeader + " " + title + " " + colorReset)

	if len(msgs) == 0 {
		writeLine(colorDim + "(no messages)" + colorReset)
		return b.String(), hitLine
	}

	if chat.IsEncryptionNotice(msgs) {
		for _, l := range wrapLine(msgs[0].Content, bubbleW) {
			writeLine(colorNotice + center(l, width) + colorReset)
		}
		msgs = msgs[1:]
	}

	window, before, after := contextWindow(msgs, opts.HitLine, opts.Context)
	if before > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, before, colorReset))
	}

	for _, g := range chat.GroupByDay(window) {
		writeLine("")
		writeLine(center(colorDay+" "+g.Day.Format(dayLayout)+" "+colorReset, width))
		writeLine("")

		for _, m := range g.Messages {
			isHit := opts.HitLine > 0 && m.Line == opts.HitLine
			if isHit {
				hitLine = lineCount
			}
			mine := opts.CurrentUser != "" && m.Sender == opts.CurrentUser
			stamp := m.Date.Format(timeLayout)

			var header string
			switch {
			case mine:
				header = alignRight(colorDim+stamp+colorReset+" "+colorTick+readReceipt+colorReset, width)
			default:
				header = senderColor(m.Sender) + m.Sender + colorReset + " " + colorDim + stamp + colorReset
			}
			if isHit {
				header = colorHit + ">>" + colorReset + header
			}
			writeLine(header)

			for _, bl := range strings.Split(messageBody(m, opts.Query), "\n") {
				for _, wl := range wrapLine(bl, bubbleW-2) {
					if mine {
						writeLine(alignRight(wl, width))
					} else {
						writeLine("  " + wl)
					}
				}
			}
		}
	}

	if after > 0 {
		writeLine("")
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, after, colorReset))
	}

	return b.String(), hitLine
}

// contextWindow slices msgs to context messages around the one at hitLine.
// Without a hit or context the whole slice is returned.
func contextWindow(msgs []parse.Message, hitLine, context int) (window []parse.Message, before, after int) {
	if hitLine <= 0 || context <= 0 {
		return msgs, 0, 0
	}
	hit := -1
	for i, m := range msgs {
		if m.Line == hitLine {
			hit = i
			break
		}
	}
	if hit < 0 {
		return msgs, 0, 0
	}
	start := hit - context
	if start < 0 {
		start = 0
	}
	end := hit + context + 1
	if end > len(msgs) {
		end = len(msgs)
	}
	return msgs[start:end], start, len(msgs) - end
}

// RenderStoredChat renders a chat previously imported into the index.
func RenderStoredChat(db *index.DB, chatKey string, opts Options) (string, int, error) {
	c, err := db.GetChat(chatKey)
	if err != nil {
		return "", -1, fmt.Errorf("get chat: %w", err)
	}
	if c == nil {
		return "", -1, fmt.Errorf("chat not found: %s", chatKey)
	}

	msgs, err := db.GetMessages(chatKey)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}

	out, hitLine := RenderChat(msgs, opts)
	return out, hitLine, nil
}
