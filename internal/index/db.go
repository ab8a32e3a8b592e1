package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS chats (
    chat_key      TEXT PRIMARY KEY,
    archive_path  TEXT NOT NULL,
    entry_name    TEXT NOT NULL DEFAULT '',
    title         TEXT NOT NULL DEFAULT '',
    participants  TEXT NOT NULL DEFAULT '',
    first_at      TEXT NOT NULL DEFAULT '',
    last_at       TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    skipped_lines INTEGER NOT NULL DEFAULT 0,
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    chat_key    TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    unix_ts     INTEGER NOT NULL DEFAULT 0,
    utc_offset  INTEGER NOT NULL DEFAULT 0,
    sender      TEXT NOT NULL,
    content     TEXT NOT NULL,
    is_media    INTEGER NOT NULL DEFAULT 0,
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chat_key, seq)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    content,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;
`

// tsLayout is the sortable text form used for filters and listings. Dates
// are read back from unix_ts and utc_offset, which also hold years past 9999.
const tsLayout = time.RFC3339

const dropSchema = `
DROP TRIGGER IF EXISTS messages_ai;
DROP TRIGGER IF EXISTS messages_ad;
DROP TRIGGER IF EXISTS messages_au;
DROP TABLE IF EXISTS messages_fts;
DROP TABLE IF EXISTS messages;
DROP TABLE IF EXISTS chats;
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	// schema version tracking for forced re-index
	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return d, nil
}

// schemaVersion should be bumped whenever line parsing or the table layout
// changes to force a full re-index.
const schemaVersion = "2"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err == nil {
		// tables from an older layout are rebuilt and re-filled by the next index run
		if _, err := d.db.Exec(dropSchema + schema); err != nil {
			return err
		}
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ArchiveInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetArchiveInfo(chatKey string) (*ArchiveInfo, error) {
	var info ArchiveInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM chats WHERE chat_key = ?",
		chatKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllChatKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT chat_key FROM chats")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteChat(chatKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteChatTx(tx, chatKey); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteChatTx(tx *sql.Tx, chatKey string) error {
	if _, err := tx.Exec("DELETE FROM messages WHERE chat_key = ?", chatKey); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM chats WHERE chat_key = ?", chatKey)
	return err
}

func (d *DB) ChatCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type ChatRow struct {
	ChatKey      string
	ArchivePath  string
	EntryName    string
	Title        string
	Participants string
	FirstAt      string
	LastAt       string
	MessageCount int
	SkippedLines int
}

const chatColumns = "chat_key, archive_path, entry_name, title, participants, first_at, last_at, message_count, skipped_lines"

func scanChat(row interface{ Scan(...any) error }) (ChatRow, error) {
	var c ChatRow
	err := row.Scan(&c.ChatKey, &c.ArchivePath, &c.EntryName, &c.Title, &c.Participants,
		&c.FirstAt, &c.LastAt, &c.MessageCount, &c.SkippedLines)
	return c, err
}

func (d *DB) GetChat(chatKey string) (*ChatRow, error) {
	c, err := scanChat(d.db.QueryRow("SELECT "+chatColumns+" FROM chats WHERE chat_key = ?", chatKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChats returns chats with the most recent last message first.
func (d *DB) ListChats(limit int) ([]ChatRow, error) {
	query := "SELECT " + chatColumns + " FROM chats ORDER BY last_at DESC, chat_key"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []ChatRow
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetMessages returns the stored messages of a chat in export order.
func (d *DB) GetMessages(chatKey string) ([]parse.Message, error) {
	rows, err := d.db.Query(
		"SELECT unix_ts, utc_offset, sender, content, is_media, line_number FROM messages WHERE chat_key = ? ORDER BY seq",
		chatKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []parse.Message
	for rows.Next() {
		var m parse.Message
		var unix int64
		var offset int
		if err := rows.Scan(&unix, &offset, &m.Sender, &m.Content, &m.IsMedia, &m.Line); err != nil {
			return nil, err
		}
		m.Date = time.Unix(unix, 0).In(zoneFor(offset))
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// zoneFor returns a location with the given UTC offset, reusing Local and UTC
// when they match so dates compare and print as they did before storage.
func zoneFor(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	if _, local := time.Now().Zone(); local == offset {
		return time.Local
	}
	return time.FixedZone("", offset)
}
