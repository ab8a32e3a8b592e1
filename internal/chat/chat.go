// Package chat derives display-level facts about a parsed conversation:
// who took part, the date span, day groups and placeholder messages.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
)

const (
	deletedText       = "This message was deleted"
	deletedNull       = "null"
	encryptionKeyword = "encrypted"
	defaultChatTitle  = "WhatsApp Chat"
)

type DayGroup struct {
	Day      time.Time // midnight in the messages' location
	Messages []parse.Message
}

// IsDeleted reports whether m is the placeholder left by a deleted message.
func IsDeleted(m parse.Message) bool {
	return m.Content == deletedText || m.Content == deletedNull
}

// IsEncryptionNotice reports whether the conversation opens with the
// end-to-end encryption banner.
func IsEncryptionNotice(msgs []parse.Message) bool {
	return len(msgs) > 0 && strings.Contains(msgs[0].Content, encryptionKeyword)
}

// Participants returns distinct non-empty senders in first-seen order.
func Participants(msgs []parse.Message) []string {
	if IsEncryptionNotice(msgs) {
		msgs = msgs[1:]
	}
	seen := make(map[string]bool)
	var names []string
	for _, m := range msgs {
		if m.Sender == "" || seen[m.Sender] {
			continue
		}
		seen[m.Sender] = true
		names = append(names, m.Sender)
	}
	return names
}

func Title(participants []string) string {
	switch len(participants) {
	case 0:
		return defaultChatTitle
	case 1:
		return participants[0]
	default:
		return fmt.Sprintf("%s & %d others", participants[0], len(participants)-1)
	}
}

// Span returns the dates of the first and last message in file order.
func Span(msgs []parse.Message) (first, last time.Time) {
	if len(msgs) == 0 {
		return time.Time{}, time.Time{}
	}
	return msgs[0].Date, msgs[len(msgs)-1].Date
}

// GroupByDay splits msgs into runs of consecutive messages sharing a
// calendar day. Messages are never reordered, so a day can appear twice if
// the export is out of order.
func GroupByDay(msgs []parse.Message) []DayGroup {
	var groups []DayGroup
	for _, m := range msgs {
		day := startOfDay(m.Date)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Messages: []parse.Message{m}})
	}
	return groups
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
