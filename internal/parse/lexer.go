package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lineFields holds the raw tokens of one export line.
type lineFields struct {
	day, month, year int
	hour, minute     int
	second           int // parsed but unused for the time of day
	hasSecond        bool
	sender, content  string
}

// lexLine recognises
//
//	line     = date [","] WS time [WS] [meridiem] [WS] "-" WS sender ":" WS content
//	date     = D{1,2} "/" D{1,2} "/" (D{2} | D{4})
//	time     = D{1,2} ":" D{2} [":" D{2}]
//	meridiem = "am" | "pm"   (any case)
//
// where WS is exactly one whitespace rune, sender is the shortest non-empty
// text followed by ":" WS, and content is the non-empty remainder of the
// line. Anything may follow the content; the line is anchored at its start
// only.
func lexLine(s string) (lineFields, bool) {
	var f lineFields
	c := &cursor{s: s}
	var ok bool

	// date
	if f.day, ok = c.number(1, 2); !ok || !c.char('/') {
		return f, false
	}
	if f.month, ok = c.number(1, 2); !ok || !c.char('/') {
		return f, false
	}
	start := c.pos
	if f.year, ok = c.number(2, 4); !ok || c.pos-start == 3 {
		return f, false
	}
	c.char(',')
	if !c.space() {
		return f, false
	}

	// time
	if f.hour, ok = c.number(1, 2); !ok || !c.char(':') {
		return f, false
	}
	if f.minute, ok = c.number(2, 2); !ok {
		return f, false
	}
	if c.peek(':') {
		save := c.pos
		c.char(':')
		if f.second, ok = c.number(2, 2); ok {
			f.hasSecond = true
		} else {
			c.pos = save
		}
	}

	// meridiem, optionally surrounded by single whitespace runes
	c.space()
	c.meridiem()
	c.space()

	if !c.char('-') || !c.space() {
		return f, false
	}

	rest := s[c.pos:]
	sender, content, ok := splitSender(rest)
	if !ok {
		return f, false
	}
	f.sender, f.content = sender, content
	return f, true
}

// splitSender finds the first ':' after at least one rune that is followed
// by a whitespace rune and a non-empty remainder.
func splitSender(rest string) (string, string, bool) {
	if rest == "" {
		return "", "", false
	}
	_, first := utf8.DecodeRuneInString(rest)
	from := first
	for {
		idx := strings.IndexByte(rest[from:], ':')
		if idx < 0 {
			return "", "", false
		}
		colon := from + idx
		r, size := utf8.DecodeRuneInString(rest[colon+1:])
		if size > 0 && unicode.IsSpace(r) && colon+1+size < len(rest) {
			return rest[:colon], rest[colon+1+size:], true
		}
		from = colon + 1
	}
}

type cursor struct {
	s   string
	pos int
}

// number consumes between min and max ASCII digits.
func (c *cursor) number(min, max int) (int, bool) {
	n, i := 0, 0
	for i < max && c.pos+i < len(c.s) {
		b := c.s[c.pos+i]
		if b < '0' || b > '9' {
			break
		}
		n = n*10 + int(b-'0')
		i++
	}
	if i < min {
		return 0, false
	}
	c.pos += i
	return n, true
}

func (c *cursor) peek(b byte) bool {
	return c.pos < len(c.s) && c.s[c.pos] == b
}

func (c *cursor) char(b byte) bool {
	if !c.peek(b) {
		return false
	}
	c.pos++
	return true
}

func (c *cursor) space() bool {
	r, size := utf8.DecodeRuneInString(c.s[c.pos:])
	if size == 0 || !unicode.IsSpace(r) {
		return false
	}
	c.pos += size
	return true
}

// meridiem consumes "am" or "pm" in any case and returns it lower-cased.
func (c *cursor) meridiem() string {
	if c.pos+2 > len(c.s) {
		return ""
	}
	m := strings.ToLower(c.s[c.pos : c.pos+2])
	if m != "am" && m != "pm" {
		return ""
	}
	c.pos += 2
	return m
}
