package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chat-export-viewer/internal/archive"
	"github.com/Zuo-Peng/chat-export-viewer/internal/parse"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// run executes the root command with HOME pointed at a temp dir.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestView_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.zip")
	writeZip(t, path, map[string]string{
		"WhatsApp Chat with Bob.txt": "5/3/23, 9:15 pm - Alice: Hello there\n" +
			"5/3/23, 9:16 pm - Bob: <Media omitted>\n",
	})

	out, err := run(t, "view", "--json", path)
	if err != nil {
		t.Fatalf("view error = %v", err)
	}

	var msgs []parse.Message
	if err := json.Unmarshal([]byte(out), &msgs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender != "Alice" || msgs[0].Content != "Hello there" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if !msgs[1].IsMedia {
		t.Error("msgs[1] not flagged as media")
	}
}

func TestView_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.zip")
	writeZip(t, path, map[string]string{
		"chat.txt": "5/3/23, 9:15 pm - Alice: Hello there\n",
	})

	out, err := run(t, "view", "--me", "Bob", path)
	if err != nil {
		t.Fatalf("view error = %v", err)
	}
	if !strings.Contains(out, "Hello there") || !strings.Contains(out, "Alice") {
		t.Errorf("plain output missing message:\n%s", out)
	}
}

func TestView_NoTextEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.zip")
	writeZip(t, path, map[string]string{"IMG-001.jpg": "jpeg"})

	_, err := run(t, "view", path)
	if !errors.Is(err, archive.ErrNoTextEntry) {
		t.Errorf("view error = %v, want ErrNoTextEntry", err)
	}
}
