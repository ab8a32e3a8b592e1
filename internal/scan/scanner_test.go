package scan

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "WhatsApp Chat with Alice.zip"))
	touch(t, filepath.Join(root, "nested", "family.ZIP"))
	touch(t, filepath.Join(root, "nested", "notes.txt"))
	touch(t, filepath.Join(root, ".hidden", "skipped.zip"))

	files, err := ScanRoot(root)
	if err != nil {
		t.Fatalf("ScanRoot() error = %v", err)
	}

	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		got = append(got, filepath.ToSlash(rel))
		if f.Size != 1 || f.Mtime == 0 {
			t.Errorf("%s: size=%d mtime=%d", rel, f.Size, f.Mtime)
		}
	}
	sort.Strings(got)

	want := []string{"WhatsApp Chat with Alice.zip", "nested/family.ZIP"}
	if len(got) != len(want) {
		t.Fatalf("ScanRoot() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanRoot_Missing(t *testing.T) {
	files, err := ScanRoot(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ScanRoot() error = %v, want nil for missing root", err)
	}
	if len(files) != 0 {
		t.Errorf("ScanRoot() returned %d files", len(files))
	}

	files, err = ScanRoot("")
	if err != nil || files != nil {
		t.Errorf("ScanRoot(\"\") = %v, %v", files, err)
	}
}
