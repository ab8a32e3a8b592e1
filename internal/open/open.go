package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chat-export-viewer/internal/archive"
	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
)

// OpenChat extracts the transcript of an indexed chat into cacheDir and
// opens it in $EDITOR at line.
func OpenChat(db *index.DB, chatKey string, line int, cacheDir string) error {
	c, err := db.GetChat(chatKey)
	if err != nil {
		return fmt.Errorf("get chat: %w", err)
	}
	if c == nil {
		return fmt.Errorf("chat not found: %s", chatKey)
	}

	if _, err := os.Stat(c.ArchivePath); err != nil {
		return fmt.Errorf("archive not found: %s", c.ArchivePath)
	}

	textPath, err := ExtractToCache(c.ArchivePath, chatKey, cacheDir)
	if err != nil {
		return err
	}

	if line < 1 {
		line = 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	return openInEditor(editor, textPath, line)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExtractToCache writes the archive's transcript to cacheDir and returns
// the file path.
func ExtractToCache(archivePath, chatKey, cacheDir string) (string, error) {
	entry, err := archive.Extract(archivePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	name := strings.Trim(unsafeChars.ReplaceAllString(chatKey, "_"), "_") + ".txt"
	path := filepath.Join(cacheDir, name)
	if err := os.WriteFile(path, []byte(entry.Text), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}

func openInEditor(editor, filePath string, lineNum int) error {
	cmd := editorCommand(editor, filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
