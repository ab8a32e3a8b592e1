package parse

import "time"

type Message struct {
	Date    time.Time `json:"date"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	IsMedia bool      `json:"isMedia"`
	Line    int       `json:"line"` // 1-based line number in the export text
}

type Stats struct {
	Lines   int
	Matched int
	Skipped int
}
