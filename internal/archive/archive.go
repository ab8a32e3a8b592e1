// Package archive pulls the chat transcript out of an exported zip file.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
)

const textExt = ".txt"

// maxTextSize caps how much of a transcript entry is read into memory.
const maxTextSize = 256 * 1024 * 1024 // 256MB

// ErrNoTextEntry is returned when an archive holds no entry ending in .txt.
var ErrNoTextEntry = errors.New("no .txt file found in the zip")

type Entry struct {
	Name string
	Text string
}

// Extract opens the zip at path and returns its first text entry.
func Extract(path string) (*Entry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer zr.Close()

	entry, err := firstTextEntry(&zr.Reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entry, nil
}

// ExtractReader is Extract for an archive that is already open or in memory.
func ExtractReader(r io.ReaderAt, size int64) (*Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return firstTextEntry(zr)
}

// firstTextEntry walks entries in central-directory order.
func firstTextEntry(zr *zip.Reader) (*Entry, error) {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, textExt) {
			continue
		}
		text, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return &Entry{Name: f.Name, Text: text}, nil
	}
	return nil, ErrNoTextEntry
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxTextSize))
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
