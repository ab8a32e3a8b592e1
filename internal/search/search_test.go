package search

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/chat-export-viewer/internal/index"
)

func writeArchive(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("chat.txt")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte(text))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func setupDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "cev.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	writeArchive(t, filepath.Join(root, "family.zip"),
		"1/2/23, 9:00 am - Mum: dinner at seven tonight\n"+
			"1/2/23, 9:05 am - Dad: bring the dinner plates\n"+
			"1/2/23, 9:06 am - Dad: <Media omitted>\n")
	writeArchive(t, filepath.Join(root, "work.zip"),
		"3/4/24, 10:00 am - Boss: quarterly report due\n"+
			"3/4/24, 10:01 am - Li: 明天开会\n")

	if _, err := index.IndexAll(db, root, time.UTC); err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	return db
}

func TestSearch_FTS(t *testing.T) {
	db := setupDB(t)

	results, err := Search(db, Options{Query: "dinner"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (deduplicated per chat)", len(results))
	}
	r := results[0]
	if r.ChatKey != "chat:family" {
		t.Errorf("ChatKey = %q", r.ChatKey)
	}
	if r.Participants != "Mum, Dad" || r.MessageCount != 3 {
		t.Errorf("chat details = %q, %d", r.Participants, r.MessageCount)
	}
	if r.Line != 1 && r.Line != 2 {
		t.Errorf("Line = %d, want 1 or 2", r.Line)
	}
	if !strings.Contains(r.Snippet, ">>>dinner<<<") {
		t.Errorf("Snippet = %q, want marked match", r.Snippet)
	}
}

func TestSearch_Filters(t *testing.T) {
	db := setupDB(t)

	results, err := Search(db, Options{Query: "dinner", Sender: "Dad"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Sender != "Dad" || results[0].Line != 2 {
		t.Errorf("sender filter results = %+v", results)
	}

	results, err = Search(db, Options{Query: "Media", MediaOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Line != 3 {
		t.Errorf("media filter results = %+v", results)
	}

	results, err = Search(db, Options{Query: "dinner", Since: "2024-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("since filter kept %d old results", len(results))
	}
}

func TestSearch_CJK(t *testing.T) {
	db := setupDB(t)

	results, err := Search(db, Options{Query: "开会"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ChatKey != "chat:work" {
		t.Fatalf("results = %+v", results)
	}
	if !strings.Contains(results[0].Snippet, ">>>开会<<<") {
		t.Errorf("Snippet = %q", results[0].Snippet)
	}
}

func TestListAll(t *testing.T) {
	db := setupDB(t)

	results, err := ListAll(db, Options{})
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(results) != 2 || results[0].ChatKey != "chat:work" {
		t.Fatalf("ListAll() = %+v, want work first", results)
	}
	if results[0].MessageCount != 2 || results[0].Participants != "Boss, Li" || results[0].Line != 0 {
		t.Errorf("ListAll()[0] = %+v", results[0])
	}

	results, _ = ListAll(db, Options{Query: "mum"})
	if len(results) != 1 || results[0].ChatKey != "chat:family" {
		t.Errorf("filtered ListAll() = %+v", results)
	}

	results, _ = ListAll(db, Options{Limit: 1})
	if len(results) != 1 {
		t.Errorf("ListAll(limit=1) returned %d", len(results))
	}
}

func TestMakeSnippet(t *testing.T) {
	got := makeSnippet("see you at the station", "station", 4)
	if got != "...the >>>station<<<" {
		t.Errorf("makeSnippet() = %q", got)
	}

	got = makeSnippet("no match here", "zzz", 3)
	if got != "no mat..." {
		t.Errorf("makeSnippet() without match = %q", got)
	}
}
