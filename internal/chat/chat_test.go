package chat

import (
	"reflect"
	"testing"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
)

func msg(day, hour int, sender, content string) parse.Message {
	return parse.Message{
		Date:    time.Date(2023, 3, day, hour, 0, 0, 0, time.UTC),
		Sender:  sender,
		Content: content,
	}
}

func TestIsDeleted(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"This message was deleted", true},
		{"null", true},
		{"Null", false},
		{"this message was deleted", false},
		{"hello", false},
	}
	for _, tt := range tests {
		if got := IsDeleted(parse.Message{Content: tt.content}); got != tt.want {
			t.Errorf("IsDeleted(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestParticipants(t *testing.T) {
	msgs := []parse.Message{
		msg(1, 9, "System", "Messages and calls are end-to-end encrypted."),
		msg(1, 10, "Alice", "hi"),
		msg(1, 11, "Bob", "hey"),
		msg(1, 12, "Alice", "how are you"),
		msg(1, 13, "", "empty sender"),
		msg(1, 14, "Carol", "joined"),
	}

	got := Participants(msgs)
	want := []string{"Alice", "Bob", "Carol"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Participants() = %v, want %v", got, want)
	}

	if !IsEncryptionNotice(msgs) {
		t.Error("IsEncryptionNotice() = false, want true")
	}
	if IsEncryptionNotice(msgs[1:]) {
		t.Error("IsEncryptionNotice() = true for a normal first message")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{nil, "WhatsApp Chat"},
		{[]string{"Alice"}, "Alice"},
		{[]string{"Alice", "Bob", "Carol"}, "Alice & 2 others"},
	}
	for _, tt := range tests {
		if got := Title(tt.names); got != tt.want {
			t.Errorf("Title(%v) = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestGroupByDay(t *testing.T) {
	msgs := []parse.Message{
		msg(1, 9, "A", "1"),
		msg(1, 23, "B", "2"),
		msg(2, 0, "A", "3"),
		msg(1, 8, "B", "4"), // out of order in the export
	}

	groups := GroupByDay(msgs)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	wantSizes := []int{2, 1, 1}
	wantDays := []int{1, 2, 1}
	for i, g := range groups {
		if len(g.Messages) != wantSizes[i] {
			t.Errorf("group %d has %d messages, want %d", i, len(g.Messages), wantSizes[i])
		}
		if g.Day.Day() != wantDays[i] || g.Day.Hour() != 0 {
			t.Errorf("group %d day = %v", i, g.Day)
		}
	}

	if GroupByDay(nil) != nil {
		t.Error("GroupByDay(nil) should be nil")
	}
}

func TestSpan(t *testing.T) {
	first, last := Span(nil)
	if !first.IsZero() || !last.IsZero() {
		t.Error("Span(nil) should return zero times")
	}

	msgs := []parse.Message{msg(3, 9, "A", "x"), msg(1, 9, "A", "y")}
	first, last = Span(msgs)
	if first.Day() != 3 || last.Day() != 1 {
		t.Errorf("Span() = %v, %v; want file order", first, last)
	}
}
