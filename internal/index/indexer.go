package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/archive"
	"github.com/Zuo-Peng/chat-export-viewer/internal/chat"
	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
	"github.com/Zuo-Peng/chat-export-viewer/internal/scan"
)

const (
	rootKeyPrefix = "chat:"
	fileKeyPrefix = "file:"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// parsedChat is one extracted and parsed archive ready to be stored.
type parsedChat struct {
	Row      ChatRow
	Mtime    int64
	Size     int64
	Messages []parse.Message
}

// ChatKey derives the key of an archive found under root.
func ChatKey(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return FileKey(path)
	}
	return rootKeyPrefix + strings.TrimSuffix(filepath.ToSlash(rel), ".zip")
}

// FileKey derives the key of an archive imported by path.
func FileKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return fileKeyPrefix + filepath.ToSlash(path)
}

// IndexAll imports every archive under root whose mtime or size changed and
// prunes root chats whose archive disappeared. Archives imported by path
// are left alone.
func IndexAll(db *DB, root string, loc *time.Location) (Stats, error) {
	var stats Stats

	files, err := scan.ScanRoot(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which archives we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := ChatKey(root, fi.Path)
		seenKeys[key] = struct{}{}

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		pc, err := parseArchive(fi.Path, key, fi.Mtime, fi.Size, loc)
		if err != nil {
			stats.Errors++
			slog.Warn("parse archive", "path", fi.Path, "error", err)
			continue
		}

		if err := indexChat(db, pc); err != nil {
			stats.Errors++
			slog.Warn("index archive", "path", fi.Path, "error", err)
			continue
		}
		stats.Updated++
	}

	pruned, err := pruneChats(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

// ImportArchive indexes a single archive and returns its chat key.
func ImportArchive(db *DB, path string, loc *time.Location) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := FileKey(path)
	pc, err := parseArchive(path, key, info.ModTime().Unix(), info.Size(), loc)
	if err != nil {
		return "", err
	}
	if err := indexChat(db, pc); err != nil {
		return "", fmt.Errorf("index %s: %w", path, err)
	}
	return key, nil
}

func parseArchive(path, key string, mtime, size int64, loc *time.Location) (*parsedChat, error) {
	entry, err := archive.Extract(path)
	if err != nil {
		return nil, err
	}

	msgs, ps := parse.ParseChat(entry.Text, loc)
	slog.Debug("parsed archive", "path", path, "entry", entry.Name,
		"lines", ps.Lines, "messages", ps.Matched, "skipped", ps.Skipped)

	participants := chat.Participants(msgs)
	first, last := chat.Span(msgs)
	pc := &parsedChat{
		Row: ChatRow{
			ChatKey:      key,
			ArchivePath:  path,
			EntryName:    entry.Name,
			Title:        chat.Title(participants),
			Participants: strings.Join(participants, ", "),
			MessageCount: len(msgs),
			SkippedLines: ps.Skipped,
		},
		Mtime:    mtime,
		Size:     size,
		Messages: msgs,
	}
	if len(msgs) > 0 {
		pc.Row.FirstAt = first.Format(tsLayout)
		pc.Row.LastAt = last.Format(tsLayout)
	}
	return pc, nil
}

func needsUpdate(db *DB, chatKey string, mtime, size int64) (bool, error) {
	info, err := db.GetArchiveInfo(chatKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new archive
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func indexChat(db *DB, pc *parsedChat) error {
	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	r := pc.Row
	if err := deleteChatTx(tx, r.ChatKey); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO chats (chat_key, archive_path, entry_name, title, participants, first_at, last_at, message_count, skipped_lines, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ChatKey, r.ArchivePath, r.EntryName, r.Title, r.Participants,
		r.FirstAt, r.LastAt, r.MessageCount, r.SkippedLines,
		pc.Mtime, pc.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (chat_key, seq, ts, unix_ts, utc_offset, sender, content, is_media, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range pc.Messages {
		_, offset := m.Date.Zone()
		_, err := stmt.Exec(
			r.ChatKey,
			i,
			m.Date.Format(tsLayout),
			m.Date.Unix(),
			offset,
			m.Sender,
			m.Content,
			m.IsMedia,
			m.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// pruneChats removes root chats that were not seen in the last scan.
func pruneChats(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllChatKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if !strings.HasPrefix(key, rootKeyPrefix) {
			continue
		}
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteChat(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
