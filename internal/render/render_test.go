package render

import (
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
)

// stripANSI removes escape sequences so assertions see plain text.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if n := escapeLen(s[i:]); n > 0 {
			i += n
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func at(day, hour, min int) time.Time {
	return time.Date(2023, 3, day, hour, min, 0, 0, time.UTC)
}

func sampleMessages() []parse.Message {
	return []parse.Message{
		{Date: at(5, 21, 0), Sender: "Alice", Content: "Messages and calls are end-to-end encrypted.", Line: 1},
		{Date: at(5, 21, 15), Sender: "Alice", Content: "Hello there", Line: 2},
		{Date: at(5, 21, 16), Sender: "Rakesh", Content: "Hi Alice", Line: 3},
		{Date: at(6, 8, 0), Sender: "Alice", Content: "<Media omitted>", IsMedia: true, Line: 5},
		{Date: at(6, 8, 1), Sender: "Alice", Content: "This message was deleted", Line: 6},
	}
}

func TestRenderChat_Layout(t *testing.T) {
	out, hit := RenderChat(sampleMessages(), Options{CurrentUser: "Rakesh", Width: 60})
	plain := stripANSI(out)

	if hit != -1 {
		t.Errorf("hit line = %d, want -1 without HitLine", hit)
	}

	for _, want := range []string{
		"Alice & 1 others  05/03/2023 - 06/03/2023",
		"Messages and calls are end-to-end encrypted.",
		"Sunday, March 5, 2023",
		"Monday, March 6, 2023",
		"Alice 21:15",
		"  Hello there",
		"[media] <Media omitted>",
		"This message was deleted",
	} {
		if !strings.Contains(plain, want) {
			t.Errorf("output missing %q\n%s", want, plain)
		}
	}

	// the encryption notice is a banner, not a message
	if strings.Contains(plain, "Alice 21:00") {
		t.Error("encryption notice rendered as a message")
	}

	// current user's messages are right-aligned with no sender label
	for _, line := range strings.Split(plain, "\n") {
		if strings.Contains(line, "Hi Alice") {
			if visibleWidth(line) != 60 || !strings.HasSuffix(line, "Hi Alice") {
				t.Errorf("own message not right-aligned: %q", line)
			}
		}
		if strings.HasPrefix(line, "Rakesh") {
			t.Errorf("own message has a sender label: %q", line)
		}
	}
}

func TestRenderChat_OrderPreserved(t *testing.T) {
	msgs := sampleMessages()[1:3]
	plain := stripANSI(func() string { s, _ := RenderChat(msgs, Options{}); return s }())
	if strings.Index(plain, "Hello there") > strings.Index(plain, "Hi Alice") {
		t.Error("messages rendered out of order")
	}
	// without a current user everybody gets a label
	if !strings.Contains(plain, "Rakesh 21:16") {
		t.Errorf("missing sender label for Rakesh:\n%s", plain)
	}
}

func TestRenderChat_Empty(t *testing.T) {
	out, hit := RenderChat(nil, Options{})
	plain := stripANSI(out)
	if !strings.Contains(plain, "WhatsApp Chat") || !strings.Contains(plain, "(no messages)") {
		t.Errorf("empty render = %q", plain)
	}
	if hit != -1 {
		t.Errorf("hit = %d", hit)
	}
}

func TestRenderChat_HitAndContext(t *testing.T) {
	var msgs []parse.Message
	for i := 1; i <= 20; i++ {
		msgs = append(msgs, parse.Message{Date: at(1, 10, i), Sender: "A", Content: "msg", Line: i})
	}

	out, hit := RenderChat(msgs, Options{HitLine: 10, Context: 2})
	lines := strings.Split(out, "\n")
	if hit < 0 || hit >= len(lines) {
		t.Fatalf("hit line = %d out of range", hit)
	}
	if !strings.Contains(stripANSI(lines[hit]), ">>A 10:10") {
		t.Errorf("hit line = %q", stripANSI(lines[hit]))
	}

	plain := stripANSI(out)
	if !strings.Contains(plain, "... (7 messages before) ...") {
		t.Errorf("missing before marker:\n%s", plain)
	}
	if !strings.Contains(plain, "... (8 messages after) ...") {
		t.Errorf("missing after marker:\n%s", plain)
	}
	if strings.Count(plain, "msg") != 5 {
		t.Errorf("rendered %d messages, want 5", strings.Count(plain, "msg"))
	}
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Dinner at seven, dinner", "dinner AND seven")
	want := colorBoldRed + "Dinner" + colorReset + " at " + colorBoldRed + "seven" + colorReset +
		", " + colorBoldRed + "dinner" + colorReset
	if got != want {
		t.Errorf("highlightKeywords() = %q, want %q", got, want)
	}
	if highlightKeywords("text", "") != "text" {
		t.Error("empty query should not change text")
	}
}

func TestWrapLine(t *testing.T) {
	got := wrapLine("abcdef", 4)
	if len(got) != 2 || got[0] != "abcd" || got[1] != "ef" {
		t.Errorf("wrapLine() = %q", got)
	}

	// escapes take no columns
	colored := colorDim + "abcd" + colorReset
	if got := wrapLine(colored, 4); len(got) != 1 {
		t.Errorf("wrapLine() split a colored line: %q", got)
	}

	// wide runes count double
	if got := wrapLine("你好世界", 4); len(got) != 2 {
		t.Errorf("wrapLine() CJK = %q", got)
	}
}

func TestHighlightKeywords_CaseFoldChangesByteLength(t *testing.T) {
	tests := []struct {
		name, text, query, want string
	}{
		// lower-casing Ⱥ grows it from 2 to 3 bytes
		{"Ⱥ before match", "Ⱥx", "x", "Ⱥ" + colorBoldRed + "x" + colorReset},
		{"Ⱥ as match", "aȺb", "ⱥ", "a" + colorBoldRed + "Ⱥ" + colorReset + "b"},
		// lower-casing İ shrinks it from 2 bytes to 1
		{"İ before match", "İstanbul istanbul", "istanbul", "İstanbul " + colorBoldRed + "istanbul" + colorReset},
		{"longest term first", "dinnertime", "din dinner", colorBoldRed + "dinner" + colorReset + "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := highlightKeywords(tt.text, tt.query); got != tt.want {
				t.Errorf("highlightKeywords(%q, %q) = %q, want %q", tt.text, tt.query, got, tt.want)
			}
		})
	}
}

func TestRenderChat_QueryOnNonASCIIContent(t *testing.T) {
	msgs := []parse.Message{
		{Date: at(5, 10, 0), Sender: "A", Content: "Ⱥx İİİ x", Line: 1},
	}
	out, _ := RenderChat(msgs, Options{Query: "x"})
	if !strings.Contains(stripANSI(out), "Ⱥx İİİ x") {
		t.Errorf("content mangled:\n%s", stripANSI(out))
	}
}
