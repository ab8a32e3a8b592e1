package parse

import (
	"strings"
	"time"
)

const (
	mediaOmitted  = "<Media omitted>"
	mediaAttached = "<attached:"
)

// spaceReplacer maps the no-break spaces some exporters put around the
// time and dash separators to a plain space.
var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ")

// ParseChatText parses a chat export in the local time zone.
func ParseChatText(text string) []Message {
	msgs, _ := ParseChat(text, time.Local)
	return msgs
}

// ParseChat parses every line of text independently and returns the
// messages in input order. Lines that do not match the export grammar are
// skipped and only counted in Stats; they never produce an error.
func ParseChat(text string, loc *time.Location) ([]Message, Stats) {
	if loc == nil {
		loc = time.Local
	}

	var stats Stats
	messages := make([]Message, 0)
	if text == "" {
		return messages, stats
	}

	for i, line := range strings.Split(text, "\n") {
		stats.Lines++
		msg, ok := ParseLine(line, loc)
		if !ok {
			stats.Skipped++
			continue
		}
		msg.Line = i + 1
		messages = append(messages, msg)
		stats.Matched++
	}

	return messages, stats
}

// ParseLine parses one physical export line. The second result is false
// when the line does not match the grammar described in lexLine.
func ParseLine(line string, loc *time.Location) (Message, bool) {
	if loc == nil {
		loc = time.Local
	}

	line = spaceReplacer.Replace(line)
	line = strings.TrimSuffix(line, "\r")

	f, ok := lexLine(line)
	if !ok {
		return Message{}, false
	}

	year := f.year
	if year < 100 {
		year += 2000
	}

	// Any "pm" in the line shifts the hour by a flat +12, even inside the
	// content. 12pm and 12am are not special-cased, and time.Date normalises
	// an hour of 24 into the next day.
	hour := f.hour
	if strings.Contains(strings.ToLower(line), "pm") {
		hour += 12
	}

	content := strings.TrimSpace(f.content)
	return Message{
		Date:    time.Date(year, time.Month(f.month), f.day, hour, f.minute, 0, 0, loc),
		Sender:  strings.TrimSpace(f.sender),
		Content: content,
		IsMedia: isMediaContent(content),
	}, true
}

func isMediaContent(content string) bool {
	return strings.Contains(content, mediaOmitted) || strings.HasPrefix(content, mediaAttached)
}
