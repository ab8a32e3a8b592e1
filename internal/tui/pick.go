package tui

import (
	"fmt"

	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
	"github.com/Zuo-Peng/chat-export-viewer/internal/search"
	"github.com/atotto/clipboard"
)

// selectionText is what picking r copies: the hit message as
// "sender: content", or an open command for whole-chat results.
func selectionText(db *index.DB, r search.Result) (string, error) {
	if r.Line > 0 {
		msgs, err := db.GetMessages(r.ChatKey)
		if err != nil {
			return "", fmt.Errorf("get messages: %w", err)
		}
		for _, m := range msgs {
			if m.Line == r.Line {
				return m.Sender + ": " + m.Content, nil
			}
		}
	}
	return fmt.Sprintf("cev open %q", r.ChatKey), nil
}

// copySelection puts the picked result on the clipboard, or prints it when
// no clipboard is available.
func copySelection(db *index.DB, r search.Result) error {
	text, err := selectionText(db, r)
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Println(text)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", text)
	return nil
}
